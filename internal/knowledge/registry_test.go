package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	items map[domain.Domain][]*domain.KnowledgeItem
	err   error
	calls int
}

func (f *fakeLoader) ListActiveByDomain(ctx context.Context, tenantID string, dom domain.Domain) ([]*domain.KnowledgeItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items[dom], nil
}

func TestRegistryBuildsStorePerDomain(t *testing.T) {
	r := NewRegistry("tenant-1", &fakeLoader{})

	stores := r.Stores()
	require.Len(t, stores, len(domain.Domains()))
	for i, dom := range domain.Domains() {
		assert.Equal(t, dom, stores[i].Domain())
	}

	assert.NotNil(t, r.Store(domain.DomainCrypto))
	assert.Nil(t, r.Store(domain.Domain("unknown")))
}

func TestRegistryReload(t *testing.T) {
	loader := &fakeLoader{items: map[domain.Domain][]*domain.KnowledgeItem{
		domain.DomainCrypto: {
			activeItem("utxo", domain.DomainCrypto, "protocol", "UTXO Model"),
			activeItem("halving", domain.DomainCrypto, "economics", "The Halving"),
		},
		domain.DomainREIT: {
			activeItem("ffo", domain.DomainREIT, "valuation", "FFO"),
		},
	}}
	r := NewRegistry("tenant-1", loader)

	require.NoError(t, r.Reload(context.Background()))

	assert.Equal(t, 2, r.Store(domain.DomainCrypto).Len())
	assert.Equal(t, 1, r.Store(domain.DomainREIT).Len())
	assert.Zero(t, r.Store(domain.DomainLore).Len())
	assert.Equal(t, len(domain.Domains()), loader.calls)

	// A second reload replaces, not appends.
	loader.items[domain.DomainCrypto] = loader.items[domain.DomainCrypto][:1]
	require.NoError(t, r.Reload(context.Background()))
	assert.Equal(t, 1, r.Store(domain.DomainCrypto).Len())
}

func TestRegistryReloadPropagatesLoaderError(t *testing.T) {
	loader := &fakeLoader{err: errors.New("connection refused")}
	r := NewRegistry("tenant-1", loader)

	err := r.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
