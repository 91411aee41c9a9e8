package router

import "strings"

// expansionRule appends canonical search terms when its trigger appears as a
// substring of the lowercased message.
type expansionRule struct {
	trigger string
	terms   []string
}

// expansionRules are fixed substring-triggered expansions. Order matters only
// for logging; every resulting term is searched.
var expansionRules = []expansionRule{
	{"halving", []string{"block reward", "issuance", "supply schedule"}},
	{"lightning", []string{"payment channel", "layer 2", "settlement"}},
	{"mining", []string{"proof of work", "hashrate", "difficulty"}},
	{"dividend", []string{"distribution", "payout ratio", "income"}},
	{"ffo", []string{"funds from operations", "cash flow"}},
	{"cap rate", []string{"capitalization rate", "valuation", "yield"}},
	{"whitepaper", []string{"peer-to-peer", "electronic cash", "double spend"}},
	{"genesis", []string{"genesis block", "coinbase", "chancellor"}},
}

// themeHints map conversation-theme labels supplied by the caller to extra
// search terms indicating a particular narrative context.
var themeHints = map[string][]string{
	"origins":     {"genesis block", "whitepaper"},
	"economics":   {"supply schedule", "scarcity"},
	"real-estate": {"reit", "property trust"},
	"persona":     {"nakamoto", "lore"},
}

// EnhanceQuery expands a raw message into an ordered, deduplicated list of
// search terms: the message itself first, then rule expansions, then any
// theme hints. Pure function over the fixed rule tables.
func EnhanceQuery(message string, themes []string) []string {
	lower := strings.ToLower(strings.TrimSpace(message))

	terms := make([]string, 0, 8)
	seen := make(map[string]struct{})
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	add(lower)

	for _, rule := range expansionRules {
		if strings.Contains(lower, rule.trigger) {
			for _, t := range rule.terms {
				add(t)
			}
		}
	}

	for _, theme := range themes {
		for _, t := range themeHints[strings.ToLower(strings.TrimSpace(theme))] {
			add(t)
		}
	}

	return terms
}
