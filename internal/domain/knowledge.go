package domain

import (
	"fmt"
	"time"
)

// Domain identifies a topical knowledge partition. Each domain is backed by
// its own store and declares its own closed set of categories.
type Domain string

const (
	DomainREIT    Domain = "reit"
	DomainCrypto  Domain = "crypto"
	DomainLore    Domain = "lore"
	DomainGeneral Domain = "general"
)

// ApprovalStatus represents where a knowledge item sits in the review pipeline.
type ApprovalStatus string

const (
	ApprovalStatusDraft    ApprovalStatus = "draft"
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// Origin distinguishes hub-seeded content from tenant-created content.
// The two origins have different rejection semantics: a rejected edit to a
// seed item reverts to the hub snapshot, a rejected tenant-original item
// simply never publishes.
type Origin string

const (
	OriginSeed   Origin = "seed"
	OriginTenant Origin = "tenant"
)

// KnowledgeItem is a unit of topical content held in a domain store.
type KnowledgeItem struct {
	ID          string // stable slug, unique within its domain
	TenantID    string
	Domain      Domain
	Title       string
	Content     string
	Section     string
	Category    string
	Keywords    []string
	CrossTags   []string
	Connections []string
	Source      string

	Origin            Origin
	ApprovalStatus    ApprovalStatus
	PendingApprovalID string // set while exactly one pending ApprovalRecord exists
	RemoteDocID       string // empty until first successful hub push
	Version           int64
	IsActive          bool

	// HubSnapshot is the hub's last-known version of this item, refreshed on
	// every pull and every approved publication. It becomes an approval
	// record's OriginalData at submission time, so a rejected edit can revert
	// to exactly what the hub holds.
	HubSnapshot *KnowledgeSnapshot

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSeed reports whether the item's authoritative origin is the shared hub.
func (k *KnowledgeItem) IsSeed() bool {
	return k.Origin == OriginSeed
}

// Snapshot captures the item's publishable content fields.
func (k *KnowledgeItem) Snapshot() KnowledgeSnapshot {
	return KnowledgeSnapshot{
		ID:          k.ID,
		Title:       k.Title,
		Content:     k.Content,
		Section:     k.Section,
		Category:    k.Category,
		Keywords:    append([]string(nil), k.Keywords...),
		CrossTags:   append([]string(nil), k.CrossTags...),
		Connections: append([]string(nil), k.Connections...),
		Source:      k.Source,
	}
}

// ApplySnapshot overwrites the item's content fields from a snapshot.
// Identity, origin and workflow fields are untouched.
func (k *KnowledgeItem) ApplySnapshot(s KnowledgeSnapshot) {
	k.Title = s.Title
	k.Content = s.Content
	k.Section = s.Section
	k.Category = s.Category
	k.Keywords = append([]string(nil), s.Keywords...)
	k.CrossTags = append([]string(nil), s.CrossTags...)
	k.Connections = append([]string(nil), s.Connections...)
	k.Source = s.Source
}

// KnowledgeSnapshot is the JSON-serializable content snapshot carried by
// approval records and pushed to the hub.
type KnowledgeSnapshot struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Section     string   `json:"section,omitempty"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords,omitempty"`
	CrossTags   []string `json:"cross_tags,omitempty"`
	Connections []string `json:"connections,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// domainCategories declares the closed category set per domain.
var domainCategories = map[Domain][]string{
	DomainREIT:    {"fundamentals", "regulation", "valuation", "operations", "tokenization"},
	DomainCrypto:  {"protocol", "economics", "mining", "wallets", "history"},
	DomainLore:    {"persona", "narrative", "timeline", "artifacts"},
	DomainGeneral: {"reference", "faq", "glossary"},
}

// Domains returns the declared domains in router precedence order, most
// specialized first. General is last and doubles as the fallback domain.
func Domains() []Domain {
	return []Domain{DomainREIT, DomainCrypto, DomainLore, DomainGeneral}
}

// CategoriesFor returns the declared categories for a domain.
func CategoriesFor(d Domain) []string {
	return domainCategories[d]
}

// IsValidDomain checks whether d is a declared domain.
func IsValidDomain(d Domain) bool {
	_, ok := domainCategories[d]
	return ok
}

// IsValidCategory checks whether category belongs to the domain's closed set.
func IsValidCategory(d Domain, category string) bool {
	for _, c := range domainCategories[d] {
		if c == category {
			return true
		}
	}
	return false
}

// ValidateKnowledgeItem validates a KnowledgeItem before any state
// transition is attempted.
func ValidateKnowledgeItem(k *KnowledgeItem) error {
	if k == nil {
		return NewDomainError(ErrCodeValidation, "knowledge item cannot be nil")
	}
	if k.ID == "" {
		return NewDomainError(ErrCodeValidation, "knowledge item ID is required")
	}
	if k.TenantID == "" {
		return NewDomainError(ErrCodeValidation, "knowledge item TenantID is required")
	}
	if k.Title == "" {
		return NewDomainError(ErrCodeValidation, "knowledge item Title is required")
	}
	if k.Content == "" {
		return NewDomainError(ErrCodeValidation, "knowledge item Content is required")
	}
	if !IsValidDomain(k.Domain) {
		return NewDomainError(ErrCodeValidation, fmt.Sprintf("unknown domain: %s", k.Domain))
	}
	if !IsValidCategory(k.Domain, k.Category) {
		return NewDomainError(ErrCodeValidation,
			fmt.Sprintf("category %q is not declared for domain %s", k.Category, k.Domain))
	}
	if !isValidApprovalStatus(k.ApprovalStatus) {
		return NewDomainError(ErrCodeValidation, fmt.Sprintf("invalid approval status: %s", k.ApprovalStatus))
	}
	if !isValidOrigin(k.Origin) {
		return NewDomainError(ErrCodeValidation, fmt.Sprintf("invalid origin: %s", k.Origin))
	}
	return nil
}

func isValidApprovalStatus(s ApprovalStatus) bool {
	switch s {
	case ApprovalStatusDraft, ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

func isValidOrigin(o Origin) bool {
	switch o {
	case OriginSeed, OriginTenant:
		return true
	}
	return false
}
