package service

import (
	"context"
	"time"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/hub"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/telemetry"
)

// Decision is a reviewer's verdict on a pending approval record.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ApprovalService enforces the review-gated publication pipeline between a
// tenant's local store and the shared hub.
//
// Correctness rests on state-machine guards rather than locks: the
// pending-only filter on resolution and the single PendingApprovalID
// back-reference per item. Submit marks the item pending before creating
// the queue record so a partial failure fails closed.
type ApprovalService struct {
	txRunner    TxRunnerInterface
	knowledge   KnowledgeRepositoryInterface
	approvals   ApprovalRepositoryInterface
	hubClient   HubClientInterface
	tenantScope string
	uuidGen     UUIDGenerator
}

// NewApprovalService creates a new ApprovalService instance
func NewApprovalService(
	txRunner TxRunnerInterface,
	knowledge KnowledgeRepositoryInterface,
	approvals ApprovalRepositoryInterface,
	hubClient HubClientInterface,
	tenantScope string,
) *ApprovalService {
	return &ApprovalService{
		txRunner:    txRunner,
		knowledge:   knowledge,
		approvals:   approvals,
		hubClient:   hubClient,
		tenantScope: tenantScope,
		uuidGen:     &DefaultUUIDGenerator{},
	}
}

// NewApprovalServiceWithUUIDGen creates an ApprovalService with a custom
// UUID generator (for testing).
func NewApprovalServiceWithUUIDGen(
	txRunner TxRunnerInterface,
	knowledge KnowledgeRepositoryInterface,
	approvals ApprovalRepositoryInterface,
	hubClient HubClientInterface,
	tenantScope string,
	uuidGen UUIDGenerator,
) *ApprovalService {
	s := NewApprovalService(txRunner, knowledge, approvals, hubClient, tenantScope)
	s.uuidGen = uuidGen
	return s
}

// SubmitSkip reports one item a bulk submission could not queue.
type SubmitSkip struct {
	ItemID string
	Reason string
}

// SubmitOutput is the result of a bulk submission.
type SubmitOutput struct {
	Submitted []*domain.ApprovalRecord
	Skipped   []SubmitSkip
}

// SubmitForApproval queues the given draft items for review. Exactly one
// ApprovalRecord is created per submitted item. Items that are not in draft
// (including items that already have a pending record) are skipped with a
// reason rather than failing the whole batch.
func (s *ApprovalService) SubmitForApproval(ctx context.Context, actor domain.Actor, itemIDs []string) (*SubmitOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "ApprovalService.SubmitForApproval", telemetry.SpanAttributes{
		TenantID:  actor.TenantID,
		Operation: "submit",
	})
	defer span.End()

	if !actor.Role.CanSubmit() {
		return nil, domain.ErrRoleForbidden
	}

	out := &SubmitOutput{}
	for _, itemID := range itemIDs {
		rec, skip, err := s.submitOne(ctx, actor, itemID)
		if err != nil {
			return nil, err
		}
		if skip != nil {
			out.Skipped = append(out.Skipped, *skip)
			continue
		}
		out.Submitted = append(out.Submitted, rec)
	}
	return out, nil
}

func (s *ApprovalService) submitOne(ctx context.Context, actor domain.Actor, itemID string) (*domain.ApprovalRecord, *SubmitSkip, error) {
	var rec *domain.ApprovalRecord
	var skip *SubmitSkip

	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		item, err := repos.Knowledge().GetByID(ctx, actor.TenantID, itemID)
		if err != nil {
			return err
		}
		if !item.IsActive {
			skip = &SubmitSkip{ItemID: itemID, Reason: "item is inactive"}
			return nil
		}
		if item.PendingApprovalID != "" || item.ApprovalStatus == domain.ApprovalStatusPending {
			skip = &SubmitSkip{ItemID: itemID, Reason: "item already has a pending approval"}
			return nil
		}
		if item.ApprovalStatus != domain.ApprovalStatusDraft {
			skip = &SubmitSkip{ItemID: itemID, Reason: "only draft items can be submitted"}
			return nil
		}

		changeType := domain.ChangeTypeCreate
		var original *domain.KnowledgeSnapshot
		if item.RemoteDocID != "" {
			changeType = domain.ChangeTypeUpdate
			original = item.HubSnapshot
		}

		recordID := s.uuidGen.NewString()
		candidate := &domain.ApprovalRecord{
			ID:            recordID,
			TenantID:      actor.TenantID,
			LocalRecordID: item.ID,
			RemoteDocID:   item.RemoteDocID,
			ChangeType:    changeType,
			ProposedData:  item.Snapshot(),
			OriginalData:  original,
			SubmittedBy:   actor.ID,
			SubmittedAt:   time.Now().UTC(),
			Status:        domain.ApprovalRecordPending,
		}
		if err := domain.ValidateApprovalRecord(candidate); err != nil {
			return err
		}

		// Item first, record second: if the record insert fails the item
		// rolls back with it, and a crash between the two steps can never
		// leave a pending record without a pending item.
		item.ApprovalStatus = domain.ApprovalStatusPending
		item.PendingApprovalID = recordID
		if err := repos.Knowledge().Update(ctx, item); err != nil {
			return err
		}
		if err := repos.Approvals().Create(ctx, candidate); err != nil {
			return err
		}

		rec = candidate
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return rec, skip, nil
}

// Resolve applies a reviewer's decision to a pending record. Requires the
// super-reviewer role. Resolving an already-resolved record fails with
// ErrApprovalAlreadyProcessed and mutates nothing.
func (s *ApprovalService) Resolve(ctx context.Context, actor domain.Actor, approvalID string, decision Decision, notes string) (*domain.ApprovalRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "ApprovalService.Resolve", telemetry.SpanAttributes{
		TenantID:   actor.TenantID,
		ApprovalID: approvalID,
		Operation:  string(decision),
	})
	defer span.End()

	if !actor.Role.CanReview() {
		return nil, domain.ErrReviewerRoleRequired
	}

	rec, err := s.approvals.GetPending(ctx, actor.TenantID, approvalID)
	if err != nil {
		return nil, err
	}

	switch decision {
	case DecisionApprove:
		err = s.approve(ctx, actor, rec, notes)
	case DecisionReject:
		err = s.reject(ctx, actor, rec, notes)
	default:
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "decision must be approve or reject")
	}
	if err != nil {
		return nil, err
	}

	return s.approvals.GetByID(ctx, actor.TenantID, approvalID)
}

// approve pushes the proposed snapshot to the hub, then marks the local
// item synced. The hub push happens before any local mutation: a failed
// push leaves the item pending so a retry is safe and idempotent.
func (s *ApprovalService) approve(ctx context.Context, actor domain.Actor, rec *domain.ApprovalRecord, notes string) error {
	item, err := s.knowledge.GetByID(ctx, actor.TenantID, rec.LocalRecordID)
	if err != nil {
		return err
	}

	result, err := s.hubClient.Upsert(ctx, hub.Doc{
		ID:          rec.RemoteDocID,
		Slug:        rec.ProposedData.ID,
		TenantScope: s.tenantScope,
		Domain:      item.Domain,
		Data:        rec.ProposedData,
		IsActive:    true,
	})
	if err != nil {
		return err
	}

	return s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Approvals().MarkResolved(ctx, actor.TenantID, rec.ID, domain.ApprovalRecordApproved, actor.ID, notes); err != nil {
			return err
		}

		item, err := repos.Knowledge().GetByID(ctx, actor.TenantID, rec.LocalRecordID)
		if err != nil {
			return err
		}
		item.ApplySnapshot(rec.ProposedData)
		snap := rec.ProposedData
		item.HubSnapshot = &snap
		item.RemoteDocID = result.ID
		item.Version = result.Version
		item.ApprovalStatus = domain.ApprovalStatusApproved
		item.PendingApprovalID = ""
		return repos.Knowledge().Update(ctx, item)
	})
}

// reject resolves the record without publishing. A rejected edit to a seed
// item reverts to the hub's last-approved snapshot; a rejected
// tenant-original item stays rejected with its content untouched.
func (s *ApprovalService) reject(ctx context.Context, actor domain.Actor, rec *domain.ApprovalRecord, notes string) error {
	return s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Approvals().MarkResolved(ctx, actor.TenantID, rec.ID, domain.ApprovalRecordRejected, actor.ID, notes); err != nil {
			return err
		}

		item, err := repos.Knowledge().GetByID(ctx, actor.TenantID, rec.LocalRecordID)
		if err != nil {
			return err
		}

		if rec.ChangeType == domain.ChangeTypeUpdate && rec.OriginalData != nil {
			item.ApplySnapshot(*rec.OriginalData)
			item.ApprovalStatus = domain.ApprovalStatusApproved
		} else {
			item.ApprovalStatus = domain.ApprovalStatusRejected
		}
		item.PendingApprovalID = ""
		return repos.Knowledge().Update(ctx, item)
	})
}

// ListPending returns the tenant's open review queue, oldest first.
func (s *ApprovalService) ListPending(ctx context.Context, actor domain.Actor) ([]*domain.ApprovalRecord, error) {
	return s.approvals.ListPending(ctx, actor.TenantID)
}
