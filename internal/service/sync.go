package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/hub"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/telemetry"
)

// SyncService moves knowledge between the tenant's local store and the
// shared hub. Pull is hub-wins for settled items only; push never
// overwrites an unknown remote slug unless forced.
type SyncService struct {
	repo        KnowledgeRepositoryInterface
	hubClient   HubClientInterface
	tenantScope string
}

// NewSyncService creates a new SyncService instance
func NewSyncService(repo KnowledgeRepositoryInterface, hubClient HubClientInterface, tenantScope string) *SyncService {
	return &SyncService{
		repo:        repo,
		hubClient:   hubClient,
		tenantScope: tenantScope,
	}
}

// PullResult summarizes one pull run.
type PullResult struct {
	Created int
	Updated int
	Skipped int
}

// PushResult summarizes one push run.
type PushResult struct {
	Created int
	Updated int
	Skipped int
	Errors  []string
}

// Pull fetches the hub's active documents for this tenant's scope and
// merges them into the local store. Items with unresolved local work
// (draft or pending) are skipped: local edits are never silently
// overwritten, they must go through review or be discarded first.
func (s *SyncService) Pull(ctx context.Context, actor domain.Actor) (*PullResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SyncService.Pull", telemetry.SpanAttributes{
		TenantID:  actor.TenantID,
		Operation: "pull",
	})
	defer span.End()

	if !actor.Role.CanSubmit() {
		return nil, domain.ErrRoleForbidden
	}

	docs, err := s.hubClient.FetchActive(ctx, s.tenantScope)
	if err != nil {
		return nil, err
	}

	result := &PullResult{}
	for _, doc := range docs {
		created, skipped, err := s.pullOne(ctx, actor.TenantID, doc)
		if err != nil {
			return nil, err
		}
		switch {
		case skipped:
			result.Skipped++
		case created:
			result.Created++
		default:
			result.Updated++
		}
	}
	return result, nil
}

func (s *SyncService) pullOne(ctx context.Context, tenantID string, doc hub.Doc) (created, skipped bool, err error) {
	item, err := s.repo.GetByRemoteDocID(ctx, tenantID, doc.ID)
	if errors.Is(err, domain.ErrItemNotFound) {
		// A slug collision with an unlinked local item would be a create
		// conflict, not an update. Surface it instead of clobbering.
		if existing, lookupErr := s.repo.GetByID(ctx, tenantID, doc.Slug); lookupErr == nil && existing.RemoteDocID == "" {
			return false, false, domain.NewDomainError(domain.ErrCodeAlreadyExists,
				fmt.Sprintf("local item %q collides with hub document %s", doc.Slug, doc.ID))
		}

		now := time.Now().UTC()
		snap := doc.Data
		fresh := &domain.KnowledgeItem{
			ID:          doc.Slug,
			TenantID:    tenantID,
			Domain:      doc.Domain,
			Title:       doc.Data.Title,
			Content:     doc.Data.Content,
			Section:     doc.Data.Section,
			Category:    doc.Data.Category,
			Keywords:    doc.Data.Keywords,
			CrossTags:   doc.Data.CrossTags,
			Connections: doc.Data.Connections,
			Source:      doc.Data.Source,

			Origin:         domain.OriginSeed,
			ApprovalStatus: domain.ApprovalStatusApproved,
			RemoteDocID:    doc.ID,
			Version:        doc.Version,
			IsActive:       doc.IsActive,
			HubSnapshot:    &snap,

			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := domain.ValidateKnowledgeItem(fresh); err != nil {
			return false, false, err
		}
		return true, false, s.repo.Create(ctx, fresh)
	}
	if err != nil {
		return false, false, err
	}

	if item.ApprovalStatus == domain.ApprovalStatusDraft || item.ApprovalStatus == domain.ApprovalStatusPending {
		return false, true, nil
	}
	if item.Version >= doc.Version {
		return false, true, nil
	}

	item.ApplySnapshot(doc.Data)
	snap := doc.Data
	item.HubSnapshot = &snap
	item.Version = doc.Version
	item.IsActive = doc.IsActive
	item.ApprovalStatus = domain.ApprovalStatusApproved
	return false, false, s.repo.Update(ctx, item)
}

// Push publishes the tenant's approved items to the hub. Items already
// linked to a hub document are re-upserted only under force; unlinked
// items whose slug already exists remotely are skipped unless force is
// set. Per-item failures are collected so one bad document does not
// abort the run.
func (s *SyncService) Push(ctx context.Context, actor domain.Actor, force bool) (*PushResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SyncService.Push", telemetry.SpanAttributes{
		TenantID:  actor.TenantID,
		Operation: "push",
	})
	defer span.End()

	if !actor.Role.CanPush() {
		return nil, domain.ErrReviewerRoleRequired
	}

	remote, err := s.hubClient.FetchActive(ctx, s.tenantScope)
	if err != nil {
		return nil, err
	}
	remoteBySlug := make(map[string]hub.Doc, len(remote))
	for _, doc := range remote {
		remoteBySlug[doc.Slug] = doc
	}

	items, err := s.repo.ListByStatus(ctx, actor.TenantID, domain.ApprovalStatusApproved)
	if err != nil {
		return nil, err
	}

	result := &PushResult{}
	for _, item := range items {
		if item.RemoteDocID != "" && !force {
			result.Skipped++
			continue
		}
		if _, taken := remoteBySlug[item.ID]; taken && item.RemoteDocID == "" && !force {
			result.Skipped++
			continue
		}

		wasLinked := item.RemoteDocID != ""
		snap := item.Snapshot()
		upserted, err := s.hubClient.Upsert(ctx, hub.Doc{
			ID:          item.RemoteDocID,
			Slug:        item.ID,
			TenantScope: s.tenantScope,
			Domain:      item.Domain,
			Data:        snap,
			IsActive:    item.IsActive,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.ID, err))
			continue
		}

		item.RemoteDocID = upserted.ID
		item.Version = upserted.Version
		item.HubSnapshot = &snap
		if err := s.repo.Update(ctx, item); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.ID, err))
			continue
		}

		if wasLinked {
			result.Updated++
		} else {
			result.Created++
		}
	}
	return result, nil
}
