// Package router classifies free-text queries into knowledge domains,
// queries the relevant stores, and merges the results. A store that fails is
// absorbed: the router degrades to the remaining domains or to the fallback
// signal, never to an error.
package router

import (
	"context"
	"sort"
	"strings"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/knowledge"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/telemetry"
)

// SearchResult is one ranked hit. Ephemeral: produced fresh per query, never
// persisted.
type SearchResult struct {
	Item      *domain.KnowledgeItem
	Source    domain.Domain // the domain store that produced the hit
	Relevance int           // count of distinct enhanced terms matching the item
}

// SearchOutput is the merged result of a routed query.
type SearchOutput struct {
	Results    []*SearchResult
	Sources    []domain.Domain
	TotalItems int
	// ShouldFallback is true iff the deduplicated result set is empty,
	// signalling the caller to route to a general-purpose language model.
	ShouldFallback bool
}

// KnowledgeRouter routes queries across per-domain stores. Stores are
// injected at construction; the router holds no other state.
type KnowledgeRouter struct {
	stores map[domain.Domain]knowledge.Store
}

// New creates a router over the given stores.
func New(stores []knowledge.Store) *KnowledgeRouter {
	byDomain := make(map[domain.Domain]knowledge.Store, len(stores))
	for _, s := range stores {
		byDomain[s.Domain()] = s
	}
	return &KnowledgeRouter{stores: byDomain}
}

// Search runs the full routing pipeline: intent detection, query
// enhancement, per-domain search, dedup, rank. Side-effect free apart from
// tracing.
func (r *KnowledgeRouter) Search(ctx context.Context, message string, themes []string) *SearchOutput {
	_, span := telemetry.StartSpan(ctx, "KnowledgeRouter.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	intent := DetectIntent(message)
	terms := EnhanceQuery(message, themes)

	var (
		ordered []*SearchResult
		byID    = make(map[string]*SearchResult)
		sources []domain.Domain
	)

	for _, dom := range domain.Domains() {
		if !intent.DomainFlags[dom] {
			continue
		}
		store, ok := r.stores[dom]
		if !ok {
			continue
		}

		hits := searchStore(store, terms)
		if len(hits) > 0 {
			sources = append(sources, dom)
		}

		// Dedupe by item id; the first occurrence wins for identity and
		// source attribution.
		for _, item := range hits {
			if _, dup := byID[item.ID]; dup {
				continue
			}
			res := &SearchResult{Item: item, Source: dom}
			byID[item.ID] = res
			ordered = append(ordered, res)
		}
	}

	// Relevance is recomputed over the full merged set: the count of
	// distinct enhanced terms appearing in title+content+keywords.
	for _, res := range ordered {
		res.Relevance = relevance(res.Item, terms)
	}

	// Descending relevance, ties keep prior relative order.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Relevance > ordered[j].Relevance
	})

	return &SearchOutput{
		Results:        ordered,
		Sources:        sources,
		TotalItems:     len(ordered),
		ShouldFallback: len(ordered) == 0,
	}
}

// searchStore queries one store with every enhanced term. Panics and nil
// results from a misbehaving store contribute zero hits.
func searchStore(store knowledge.Store, terms []string) (hits []*domain.KnowledgeItem) {
	defer func() {
		if recover() != nil {
			hits = nil
		}
	}()

	for _, term := range terms {
		for _, item := range store.Search(term) {
			if item == nil {
				continue
			}
			hits = append(hits, item)
		}
	}
	return hits
}

func relevance(item *domain.KnowledgeItem, terms []string) int {
	haystack := strings.ToLower(item.Title + " " + item.Content + " " + strings.Join(item.Keywords, " "))
	count := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			count++
		}
	}
	return count
}
