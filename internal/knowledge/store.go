// Package knowledge holds the per-domain stores the router queries.
//
// Stores keep an immutable in-memory snapshot of their domain's active items
// and are reloaded wholesale when the backing table changes. A consumer never
// observes a partially applied batch: Replace swaps the whole snapshot
// atomically.
package knowledge

import (
	"strings"
	"sync/atomic"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
)

// Store is the read contract a domain store exposes to the router.
type Store interface {
	// Domain returns the topical partition this store serves.
	Domain() domain.Domain
	// Search returns active items where term is a case-insensitive substring
	// of the title, content, or any keyword.
	Search(term string) []*domain.KnowledgeItem
	// GetAll returns every active item in the store.
	GetAll() []*domain.KnowledgeItem
	// GetByCategory returns active items in the given category.
	GetByCategory(category string) []*domain.KnowledgeItem
}

// MemoryStore is an in-memory Store backed by an atomically swapped snapshot.
// Corpora are tens to low hundreds of items, so matching is a linear scan.
type MemoryStore struct {
	dom      domain.Domain
	snapshot atomic.Pointer[[]*domain.KnowledgeItem]
}

// NewMemoryStore creates an empty store for the given domain.
func NewMemoryStore(dom domain.Domain) *MemoryStore {
	s := &MemoryStore{dom: dom}
	empty := make([]*domain.KnowledgeItem, 0)
	s.snapshot.Store(&empty)
	return s
}

// Domain returns the store's domain.
func (s *MemoryStore) Domain() domain.Domain {
	return s.dom
}

// Replace swaps the store's snapshot with items. Inactive items and items
// belonging to other domains are filtered out.
func (s *MemoryStore) Replace(items []*domain.KnowledgeItem) {
	next := make([]*domain.KnowledgeItem, 0, len(items))
	for _, item := range items {
		if item == nil || !item.IsActive || item.Domain != s.dom {
			continue
		}
		next = append(next, item)
	}
	s.snapshot.Store(&next)
}

// Search scans the current snapshot for term.
func (s *MemoryStore) Search(term string) []*domain.KnowledgeItem {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	var matches []*domain.KnowledgeItem
	for _, item := range *s.snapshot.Load() {
		if itemMatches(item, term) {
			matches = append(matches, item)
		}
	}
	return matches
}

// GetAll returns the current snapshot.
func (s *MemoryStore) GetAll() []*domain.KnowledgeItem {
	items := *s.snapshot.Load()
	out := make([]*domain.KnowledgeItem, len(items))
	copy(out, items)
	return out
}

// GetByCategory returns the snapshot's items in the given category.
func (s *MemoryStore) GetByCategory(category string) []*domain.KnowledgeItem {
	var matches []*domain.KnowledgeItem
	for _, item := range *s.snapshot.Load() {
		if item.Category == category {
			matches = append(matches, item)
		}
	}
	return matches
}

// Len returns the number of items in the current snapshot.
func (s *MemoryStore) Len() int {
	return len(*s.snapshot.Load())
}

func itemMatches(item *domain.KnowledgeItem, lowerTerm string) bool {
	if strings.Contains(strings.ToLower(item.Title), lowerTerm) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Content), lowerTerm) {
		return true
	}
	for _, kw := range item.Keywords {
		if strings.Contains(strings.ToLower(kw), lowerTerm) {
			return true
		}
	}
	return false
}
