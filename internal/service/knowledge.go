package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/pagination"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/telemetry"
)

// KnowledgeService handles business logic for tenant knowledge items: the
// editable side of the approval pipeline. The service is the sole mutator of
// an item's approval state outside of queue resolution.
type KnowledgeService struct {
	repo    KnowledgeRepositoryInterface
	uuidGen UUIDGenerator
}

// NewKnowledgeService creates a new KnowledgeService instance
func NewKnowledgeService(repo KnowledgeRepositoryInterface) *KnowledgeService {
	return &KnowledgeService{repo: repo, uuidGen: &DefaultUUIDGenerator{}}
}

// CreateInput represents the input for creating a knowledge item
type CreateInput struct {
	ID          string // optional; derived from Title when empty
	Domain      domain.Domain
	Title       string
	Content     string
	Section     string
	Category    string
	Keywords    []string
	CrossTags   []string
	Connections []string
	Source      string
}

// EditInput represents the input for editing a knowledge item
type EditInput struct {
	ItemID      string
	Title       string
	Content     string
	Section     string
	Category    string
	Keywords    []string
	CrossTags   []string
	Connections []string
	Source      string
}

// ListInput selects one page of the tenant's items.
type ListInput struct {
	Cursor string
	Limit  int
}

// ListOutput is one page of items.
type ListOutput struct {
	Items   []*domain.KnowledgeItem
	Cursor  string
	HasMore bool
}

// Create adds a tenant-original item. New items start in draft: they never
// reach the hub without going through review.
func (s *KnowledgeService) Create(ctx context.Context, actor domain.Actor, input CreateInput) (*domain.KnowledgeItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Create", telemetry.SpanAttributes{
		TenantID:  actor.TenantID,
		Operation: "create",
	})
	defer span.End()

	if !actor.Role.CanEdit() {
		return nil, domain.ErrRoleForbidden
	}

	id := input.ID
	if id == "" {
		id = Slugify(input.Title)
	}

	now := time.Now().UTC()
	item := &domain.KnowledgeItem{
		ID:          id,
		TenantID:    actor.TenantID,
		Domain:      input.Domain,
		Title:       input.Title,
		Content:     input.Content,
		Section:     input.Section,
		Category:    input.Category,
		Keywords:    input.Keywords,
		CrossTags:   input.CrossTags,
		Connections: input.Connections,
		Source:      input.Source,

		Origin:         domain.OriginTenant,
		ApprovalStatus: domain.ApprovalStatusDraft,
		Version:        0,
		IsActive:       true,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := domain.ValidateKnowledgeItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// Edit mutates an item's content. Editing an approved seed item demotes it
// to draft as a side effect: hub-sourced content always requires re-review
// before it can be republished. Tenant-original items keep their state.
func (s *KnowledgeService) Edit(ctx context.Context, actor domain.Actor, input EditInput) (*domain.KnowledgeItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Edit", telemetry.SpanAttributes{
		TenantID:  actor.TenantID,
		ItemID:    input.ItemID,
		Operation: "edit",
	})
	defer span.End()

	if !actor.Role.CanEdit() {
		return nil, domain.ErrRoleForbidden
	}

	item, err := s.repo.GetByID(ctx, actor.TenantID, input.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, domain.ErrItemInactive
	}
	if item.ApprovalStatus == domain.ApprovalStatusPending {
		return nil, domain.ErrPendingApprovalExists
	}

	item.Title = input.Title
	item.Content = input.Content
	item.Section = input.Section
	item.Category = input.Category
	item.Keywords = input.Keywords
	item.CrossTags = input.CrossTags
	item.Connections = input.Connections
	item.Source = input.Source

	if item.IsSeed() && item.ApprovalStatus == domain.ApprovalStatusApproved {
		item.ApprovalStatus = domain.ApprovalStatusDraft
	}

	if err := domain.ValidateKnowledgeItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// Deactivate soft-deletes an item. Immediate, bypassing the approval queue,
// but the seed/role guard still applies: only a super-reviewer may
// deactivate hub-sourced content.
func (s *KnowledgeService) Deactivate(ctx context.Context, actor domain.Actor, itemID string) (*domain.KnowledgeItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Deactivate", telemetry.SpanAttributes{
		TenantID:  actor.TenantID,
		ItemID:    itemID,
		Operation: "deactivate",
	})
	defer span.End()

	item, err := s.repo.GetByID(ctx, actor.TenantID, itemID)
	if err != nil {
		return nil, err
	}

	if !actor.Role.CanDeactivate(item) {
		if item.IsSeed() {
			return nil, domain.ErrReviewerRoleRequired
		}
		return nil, domain.ErrRoleForbidden
	}

	item.IsActive = false
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetByID retrieves one item within the actor's tenant.
func (s *KnowledgeService) GetByID(ctx context.Context, actor domain.Actor, itemID string) (*domain.KnowledgeItem, error) {
	return s.repo.GetByID(ctx, actor.TenantID, itemID)
}

// ListDrafts returns the tenant's items awaiting submission.
func (s *KnowledgeService) ListDrafts(ctx context.Context, actor domain.Actor) ([]*domain.KnowledgeItem, error) {
	return s.repo.ListByStatus(ctx, actor.TenantID, domain.ApprovalStatusDraft)
}

// List returns one page of the tenant's items.
func (s *KnowledgeService) List(ctx context.Context, actor domain.Actor, input ListInput) (*ListOutput, error) {
	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	result, err := s.repo.ListWithCursor(ctx, actor.TenantID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a stable id from a title.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
