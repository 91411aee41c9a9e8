package router

import (
	"strings"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
)

// domainKeywords is the flat, hand-maintained intent table. Matching is a
// case-insensitive substring check of each keyword against the message.
// Keeping it as data means new triggers never touch control flow.
var domainKeywords = map[domain.Domain][]string{
	domain.DomainREIT: {
		"reit", "real estate investment trust", "property trust", "dividend",
		"ffo", "funds from operations", "nav", "net asset value", "cap rate",
		"occupancy", "equity reit", "mortgage reit", "tokenized real estate",
		"commercial property", "rental income",
	},
	domain.DomainCrypto: {
		"bitcoin", "btc", "satoshi", "blockchain", "crypto", "halving",
		"proof of work", "proof-of-work", "mining", "hashrate", "hash rate",
		"utxo", "private key", "wallet", "lightning network", "difficulty adjustment",
		"21 million", "cold storage",
	},
	domain.DomainLore: {
		"nakamoto", "whitepaper", "genesis block", "cypherpunk", "hal finney",
		"origin story", "persona", "jmo", "aigent", "lore", "qubebase",
	},
	// The general domain has no triggers of its own. It is always included
	// as a fallback candidate so every query searches something.
	domain.DomainGeneral: {},
}

// Intent is the result of keyword-based domain classification.
type Intent struct {
	// DomainFlags holds one independent boolean per declared domain.
	DomainFlags map[domain.Domain]bool
	// Priority is the most specialized matched domain, or the general
	// domain when nothing matched.
	Priority domain.Domain
}

// DetectIntent classifies a free-text message into topic domains. Pure
// function: identical messages always produce identical intents. Precedence
// for Priority follows domain.Domains() order, most specialized first.
func DetectIntent(message string) Intent {
	lower := strings.ToLower(message)

	intent := Intent{
		DomainFlags: make(map[domain.Domain]bool, len(domainKeywords)),
		Priority:    domain.DomainGeneral,
	}

	prioritized := false
	for _, dom := range domain.Domains() {
		matched := matchesAny(lower, domainKeywords[dom])
		intent.DomainFlags[dom] = matched
		if matched && !prioritized {
			intent.Priority = dom
			prioritized = true
		}
	}

	// General is a fallback candidate regardless of keyword match.
	intent.DomainFlags[domain.DomainGeneral] = true

	return intent
}

func matchesAny(lowerMessage string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerMessage, kw) {
			return true
		}
	}
	return false
}
