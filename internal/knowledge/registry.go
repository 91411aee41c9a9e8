package knowledge

import (
	"context"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
)

// ItemLoader fetches the active items for one domain from persistence.
type ItemLoader interface {
	ListActiveByDomain(ctx context.Context, tenantID string, dom domain.Domain) ([]*domain.KnowledgeItem, error)
}

// Registry owns one MemoryStore per declared domain. Stores are constructed
// once at startup and passed by reference; there are no package-level
// singletons.
type Registry struct {
	tenantID string
	loader   ItemLoader
	stores   map[domain.Domain]*MemoryStore
	order    []domain.Domain
}

// NewRegistry builds a store per declared domain, in precedence order.
func NewRegistry(tenantID string, loader ItemLoader) *Registry {
	r := &Registry{
		tenantID: tenantID,
		loader:   loader,
		stores:   make(map[domain.Domain]*MemoryStore),
		order:    domain.Domains(),
	}
	for _, dom := range r.order {
		r.stores[dom] = NewMemoryStore(dom)
	}
	return r
}

// Store returns the store for a domain, or nil if the domain is unknown.
func (r *Registry) Store(dom domain.Domain) *MemoryStore {
	return r.stores[dom]
}

// Stores returns all stores in precedence order.
func (r *Registry) Stores() []Store {
	out := make([]Store, 0, len(r.order))
	for _, dom := range r.order {
		out = append(out, r.stores[dom])
	}
	return out
}

// Reload refetches every domain's active items and swaps each store's
// snapshot. Any change notification triggers a full reload; there is no
// incremental diffing at this corpus size.
func (r *Registry) Reload(ctx context.Context) error {
	for _, dom := range r.order {
		items, err := r.loader.ListActiveByDomain(ctx, r.tenantID, dom)
		if err != nil {
			return err
		}
		r.stores[dom].Replace(items)
	}
	return nil
}
