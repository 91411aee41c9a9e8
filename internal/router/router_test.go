package router

import (
	"context"
	"testing"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, dom domain.Domain, category, title, content string, keywords ...string) *domain.KnowledgeItem {
	return &domain.KnowledgeItem{
		ID:             id,
		TenantID:       "tenant-1",
		Domain:         dom,
		Title:          title,
		Content:        content,
		Category:       category,
		Keywords:       keywords,
		Origin:         domain.OriginSeed,
		ApprovalStatus: domain.ApprovalStatusApproved,
		IsActive:       true,
	}
}

func testStores() []knowledge.Store {
	reit := knowledge.NewMemoryStore(domain.DomainREIT)
	reit.Replace([]*domain.KnowledgeItem{
		item("reit-dividends", domain.DomainREIT, "fundamentals",
			"REIT Dividend Requirements", "REITs must distribute at least 90% of taxable income as dividends.", "dividend", "distribution"),
		item("reit-ffo", domain.DomainREIT, "valuation",
			"Funds From Operations", "FFO adjusts net income for depreciation and property sales.", "ffo", "cash flow"),
	})

	crypto := knowledge.NewMemoryStore(domain.DomainCrypto)
	crypto.Replace([]*domain.KnowledgeItem{
		item("btc-halving", domain.DomainCrypto, "economics",
			"The Halving", "The block reward halves every 210,000 blocks, cutting new issuance.", "halving", "supply schedule"),
		item("btc-mining", domain.DomainCrypto, "mining",
			"Proof of Work Mining", "Miners expend hashrate to extend the chain under difficulty adjustment.", "mining", "hashrate"),
	})

	lore := knowledge.NewMemoryStore(domain.DomainLore)
	lore.Replace([]*domain.KnowledgeItem{
		item("nakamoto-persona", domain.DomainLore, "persona",
			"The Nakamoto Persona", "Satoshi Nakamoto published the whitepaper and vanished.", "nakamoto", "whitepaper"),
	})

	general := knowledge.NewMemoryStore(domain.DomainGeneral)
	general.Replace([]*domain.KnowledgeItem{
		item("glossary-custody", domain.DomainGeneral, "glossary",
			"Custody", "Custody is the safekeeping of assets on behalf of another party.", "custody"),
	})

	return []knowledge.Store{reit, crypto, lore, general}
}

func TestSearchRoutesToMatchedDomain(t *testing.T) {
	r := New(testStores())

	out := r.Search(context.Background(), "how do REIT dividends work", nil)

	require.NotNil(t, out)
	assert.False(t, out.ShouldFallback)
	assert.Contains(t, out.Sources, domain.DomainREIT)
	require.NotEmpty(t, out.Results)
	assert.Equal(t, "reit-dividends", out.Results[0].Item.ID)
	assert.Equal(t, domain.DomainREIT, out.Results[0].Source)
}

func TestSearchMergesMultipleDomains(t *testing.T) {
	r := New(testStores())

	out := r.Search(context.Background(), "compare REIT dividends with bitcoin halving issuance", nil)

	assert.Contains(t, out.Sources, domain.DomainREIT)
	assert.Contains(t, out.Sources, domain.DomainCrypto)

	ids := make(map[string]bool)
	for _, res := range out.Results {
		ids[res.Item.ID] = true
	}
	assert.True(t, ids["reit-dividends"])
	assert.True(t, ids["btc-halving"])
}

func TestSearchDeduplicatesByItemID(t *testing.T) {
	r := New(testStores())

	// "halving" triggers expansion into several terms that all hit btc-halving.
	out := r.Search(context.Background(), "halving", nil)

	seen := make(map[string]int)
	for _, res := range out.Results {
		seen[res.Item.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "item %s appeared more than once", id)
	}
	assert.Equal(t, len(out.Results), out.TotalItems)
}

func TestSearchRanksByRelevance(t *testing.T) {
	r := New(testStores())

	out := r.Search(context.Background(), "halving", nil)

	require.NotEmpty(t, out.Results)
	for i := 1; i < len(out.Results); i++ {
		assert.GreaterOrEqual(t, out.Results[i-1].Relevance, out.Results[i].Relevance)
	}
	assert.Equal(t, "btc-halving", out.Results[0].Item.ID)
}

func TestSearchFallsBackToGeneral(t *testing.T) {
	r := New(testStores())

	out := r.Search(context.Background(), "custody", nil)

	assert.False(t, out.ShouldFallback)
	assert.Equal(t, []domain.Domain{domain.DomainGeneral}, out.Sources)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "glossary-custody", out.Results[0].Item.ID)
}

func TestSearchShouldFallbackOnlyWhenEmpty(t *testing.T) {
	r := New(testStores())

	out := r.Search(context.Background(), "completely unrelated gibberish zzqx", nil)

	assert.True(t, out.ShouldFallback)
	assert.Empty(t, out.Results)
	assert.Zero(t, out.TotalItems)
	assert.Empty(t, out.Sources)
}

func TestSearchAppliesThemeHints(t *testing.T) {
	r := New(testStores())

	// The message flags the lore domain but matches no item text; the
	// "persona" theme adds "nakamoto" which does.
	out := r.Search(context.Background(), "tell me the origin story", []string{"persona"})

	assert.False(t, out.ShouldFallback)
	require.NotEmpty(t, out.Results)
	assert.Equal(t, "nakamoto-persona", out.Results[0].Item.ID)
}

func TestSearchIsIdempotent(t *testing.T) {
	r := New(testStores())
	ctx := context.Background()

	first := r.Search(ctx, "bitcoin mining and REIT valuation", nil)
	second := r.Search(ctx, "bitcoin mining and REIT valuation", nil)

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Item.ID, second.Results[i].Item.ID)
		assert.Equal(t, first.Results[i].Relevance, second.Results[i].Relevance)
	}
	assert.Equal(t, first.Sources, second.Sources)
}

type panickyStore struct {
	dom domain.Domain
}

func (p *panickyStore) Domain() domain.Domain { return p.dom }
func (p *panickyStore) Search(term string) []*domain.KnowledgeItem {
	panic("store blew up")
}
func (p *panickyStore) GetAll() []*domain.KnowledgeItem                      { return nil }
func (p *panickyStore) GetByCategory(category string) []*domain.KnowledgeItem { return nil }

func TestSearchAbsorbsFailingStore(t *testing.T) {
	stores := testStores()
	// Replace the crypto store with one that panics on every query.
	for i, s := range stores {
		if s.Domain() == domain.DomainCrypto {
			stores[i] = &panickyStore{dom: domain.DomainCrypto}
		}
	}
	r := New(stores)

	out := r.Search(context.Background(), "bitcoin halving and REIT dividends", nil)

	// Crypto contributes nothing but the query still succeeds on REIT.
	assert.NotContains(t, out.Sources, domain.DomainCrypto)
	assert.Contains(t, out.Sources, domain.DomainREIT)
	assert.False(t, out.ShouldFallback)
}

func TestSearchMissingStoreIsSkipped(t *testing.T) {
	// Crypto is flagged by the message but has no registered store; the
	// general store still answers.
	general := knowledge.NewMemoryStore(domain.DomainGeneral)
	general.Replace([]*domain.KnowledgeItem{
		item("glossary-custody", domain.DomainGeneral, "glossary",
			"Bitcoin Custody", "Custody is the safekeeping of keys.", "custody"),
	})
	r := New([]knowledge.Store{general})

	out := r.Search(context.Background(), "bitcoin custody", nil)

	assert.Equal(t, []domain.Domain{domain.DomainGeneral}, out.Sources)
	require.Len(t, out.Results, 1)
}
