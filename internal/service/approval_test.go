package service

import (
	"context"
	"testing"
	"time"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newApprovalFixture(hubClient HubClientInterface, uuids ...string) (*ApprovalService, *MockKnowledgeRepository, *MockApprovalRepository) {
	knowledgeRepo := new(MockKnowledgeRepository)
	approvalRepo := new(MockApprovalRepository)
	runner := stubTxRunner{repos: stubTxRepos{knowledge: knowledgeRepo, approvals: approvalRepo}}
	svc := NewApprovalServiceWithUUIDGen(runner, knowledgeRepo, approvalRepo, hubClient, "scope-1", NewMockUUIDGenerator(uuids...))
	return svc, knowledgeRepo, approvalRepo
}

func pendingRecord(id, itemID string) *domain.ApprovalRecord {
	return &domain.ApprovalRecord{
		ID:            id,
		TenantID:      "tenant-1",
		LocalRecordID: itemID,
		ChangeType:    domain.ChangeTypeCreate,
		ProposedData: domain.KnowledgeSnapshot{
			ID:       itemID,
			Title:    "The Halving, Revised",
			Content:  "Updated content.",
			Category: "economics",
		},
		SubmittedBy: "key-admin",
		SubmittedAt: time.Now().UTC(),
		Status:      domain.ApprovalRecordPending,
	}
}

func TestApprovalService_SubmitForApproval(t *testing.T) {
	ctx := context.Background()

	t.Run("editor cannot submit", func(t *testing.T) {
		svc, knowledgeRepo, _ := newApprovalFixture(&fakeHubClient{})

		_, err := svc.SubmitForApproval(ctx, editorActor, []string{"btc-halving"})

		assert.ErrorIs(t, err, domain.ErrRoleForbidden)
		knowledgeRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("submitting a draft marks the item pending and creates one record", func(t *testing.T) {
		svc, knowledgeRepo, approvalRepo := newApprovalFixture(&fakeHubClient{}, "appr-1")

		item := draftItem("btc-halving")
		knowledgeRepo.On("GetByID", mock.Anything, "tenant-1", "btc-halving").Return(item, nil)
		knowledgeRepo.On("Update", mock.Anything, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
			return k.ApprovalStatus == domain.ApprovalStatusPending && k.PendingApprovalID == "appr-1"
		})).Return(nil)
		approvalRepo.On("Create", mock.Anything, mock.MatchedBy(func(rec *domain.ApprovalRecord) bool {
			return rec.ID == "appr-1" &&
				rec.LocalRecordID == "btc-halving" &&
				rec.ChangeType == domain.ChangeTypeCreate &&
				rec.OriginalData == nil &&
				rec.SubmittedBy == "key-admin" &&
				rec.Status == domain.ApprovalRecordPending
		})).Return(nil)

		out, err := svc.SubmitForApproval(ctx, adminActor, []string{"btc-halving"})

		require.NoError(t, err)
		require.Len(t, out.Submitted, 1)
		assert.Empty(t, out.Skipped)
		assert.Equal(t, "appr-1", out.Submitted[0].ID)
		knowledgeRepo.AssertExpectations(t)
		approvalRepo.AssertExpectations(t)
	})

	t.Run("hub-linked item submits as update with original snapshot", func(t *testing.T) {
		svc, knowledgeRepo, approvalRepo := newApprovalFixture(&fakeHubClient{}, "appr-2")

		item := approvedSeedItem("btc-halving")
		item.ApprovalStatus = domain.ApprovalStatusDraft // demoted by a prior edit
		item.Title = "The Halving, Revised"
		knowledgeRepo.On("GetByID", mock.Anything, "tenant-1", "btc-halving").Return(item, nil)
		knowledgeRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		approvalRepo.On("Create", mock.Anything, mock.MatchedBy(func(rec *domain.ApprovalRecord) bool {
			return rec.ChangeType == domain.ChangeTypeUpdate &&
				rec.RemoteDocID == "doc-1" &&
				rec.OriginalData != nil &&
				rec.OriginalData.Title == "The Halving" &&
				rec.ProposedData.Title == "The Halving, Revised"
		})).Return(nil)

		out, err := svc.SubmitForApproval(ctx, adminActor, []string{"btc-halving"})

		require.NoError(t, err)
		require.Len(t, out.Submitted, 1)
		approvalRepo.AssertExpectations(t)
	})

	t.Run("skips inactive, pending and approved items with reasons", func(t *testing.T) {
		svc, knowledgeRepo, approvalRepo := newApprovalFixture(&fakeHubClient{}, "appr-3")

		inactive := draftItem("inactive")
		inactive.IsActive = false
		pending := draftItem("pending")
		pending.ApprovalStatus = domain.ApprovalStatusPending
		pending.PendingApprovalID = "appr-0"
		approved := draftItem("approved")
		approved.ApprovalStatus = domain.ApprovalStatusApproved

		knowledgeRepo.On("GetByID", mock.Anything, "tenant-1", "inactive").Return(inactive, nil)
		knowledgeRepo.On("GetByID", mock.Anything, "tenant-1", "pending").Return(pending, nil)
		knowledgeRepo.On("GetByID", mock.Anything, "tenant-1", "approved").Return(approved, nil)
		knowledgeRepo.On("GetByID", mock.Anything, "tenant-1", "draft").Return(draftItem("draft"), nil)
		knowledgeRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		approvalRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		out, err := svc.SubmitForApproval(ctx, adminActor, []string{"inactive", "pending", "approved", "draft"})

		require.NoError(t, err)
		assert.Len(t, out.Submitted, 1)
		require.Len(t, out.Skipped, 3)
		assert.Equal(t, "inactive", out.Skipped[0].ItemID)
		assert.Contains(t, out.Skipped[0].Reason, "inactive")
		assert.Contains(t, out.Skipped[1].Reason, "pending approval")
		assert.Contains(t, out.Skipped[2].Reason, "only draft")
	})

	t.Run("missing item aborts the batch", func(t *testing.T) {
		svc, knowledgeRepo, _ := newApprovalFixture(&fakeHubClient{}, "appr-4")

		knowledgeRepo.On("GetByID", mock.Anything, "tenant-1", "ghost").Return(nil, domain.ErrItemNotFound)

		_, err := svc.SubmitForApproval(ctx, adminActor, []string{"ghost"})

		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})
}

func TestApprovalService_Resolve_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("admin cannot resolve", func(t *testing.T) {
		svc, _, approvalRepo := newApprovalFixture(&fakeHubClient{})

		_, err := svc.Resolve(ctx, adminActor, "appr-1", DecisionApprove, "")

		assert.ErrorIs(t, err, domain.ErrReviewerRoleRequired)
		approvalRepo.AssertNotCalled(t, "GetPending")
	})

	t.Run("already processed record resolves nothing", func(t *testing.T) {
		svc, knowledgeRepo, approvalRepo := newApprovalFixture(&fakeHubClient{})

		approvalRepo.On("GetPending", mock.Anything, "tenant-1", "appr-1").
			Return(nil, domain.ErrApprovalAlreadyProcessed)

		_, err := svc.Resolve(ctx, superActor, "appr-1", DecisionApprove, "")

		assert.ErrorIs(t, err, domain.ErrApprovalAlreadyProcessed)
		knowledgeRepo.AssertNotCalled(t, "Update")
	})

	t.Run("approve pushes to the hub then marks the item synced", func(t *testing.T) {
		hubClient := &fakeHubClient{upsertResult: &hub.UpsertResult{ID: "doc-9", Version: 7}}
		svc, knowledgeRepo, approvalRepo := newApprovalFixture(hubClient)

		rec := pendingRecord("appr-1", "btc-halving")
		item := draftItem("btc-halving")
		item.ApprovalStatus = domain.ApprovalStatusPending
		item.PendingApprovalID = "appr-1"

		resolved := pendingRecord("appr-1", "btc-halving")
		resolved.Status = domain.ApprovalRecordApproved
		resolved.ReviewedBy = "key-super"

		approvalRepo.On("GetPending", mock.Anything, "tenant-1", "appr-1").Return(rec, nil)
		knowledgeRepo.On("GetByID", mock.Anything, "tenant-1", "btc-halving").Return(item, nil)
		approvalRepo.On("MarkResolved", mock.Anything, "tenant-1", "appr-1",
			domain.ApprovalRecordApproved, "key-super", "ship it").Return(nil)
		knowledgeRepo.On("Update", mock.Anything, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
			return k.ApprovalStatus == domain.ApprovalStatusApproved &&
				k.PendingApprovalID == "" &&
				k.RemoteDocID == "doc-9" &&
				k.Version == 7 &&
				k.Title == "The Halving, Revised" &&
				k.HubSnapshot != nil &&
				k.HubSnapshot.Title == "The Halving, Revised"
		})).Return(nil)
		approvalRepo.On("GetByID", mock.Anything, "tenant-1", "appr-1").Return(resolved, nil)

		out, err := svc.Resolve(ctx, superActor, "appr-1", DecisionApprove, "ship it")

		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalRecordApproved, out.Status)
		assert.Equal(t, "key-super", out.ReviewedBy)

		require.Len(t, hubClient.upserted, 1)
		assert.Equal(t, "btc-halving", hubClient.upserted[0].Slug)
		assert.Equal(t, "scope-1", hubClient.upserted[0].TenantScope)
		assert.True(t, hubClient.upserted[0].IsActive)
		knowledgeRepo.AssertExpectations(t)
		approvalRepo.AssertExpectations(t)
	})

	t.Run("failed hub push leaves the record pending", func(t *testing.T) {
		hubClient := &fakeHubClient{upsertErr: domain.ErrHubUnavailable}
		svc, knowledgeRepo, approvalRepo := newApprovalFixture(hubClient)

		rec := pendingRecord("appr-1", "btc-halving")
		item := draftItem("btc-halving")
		item.ApprovalStatus = domain.ApprovalStatusPending
		item.PendingApprovalID = "appr-1"

		approvalRepo.On("GetPending", mock.Anything, "tenant-1", "appr-1").Return(rec, nil)
		knowledgeRepo.On("GetByID", mock.Anything, "tenant-1", "btc-halving").Return(item, nil)

		_, err := svc.Resolve(ctx, superActor, "appr-1", DecisionApprove, "")

		assert.ErrorIs(t, err, domain.ErrHubUnavailable)
		// No local state was touched; a retry starts from pending.
		approvalRepo.AssertNotCalled(t, "MarkResolved")
		knowledgeRepo.AssertNotCalled(t, "Update")
		assert.Equal(t, domain.ApprovalStatusPending, item.ApprovalStatus)
	})

	t.Run("invalid decision is rejected", func(t *testing.T) {
		svc, _, approvalRepo := newApprovalFixture(&fakeHubClient{})

		approvalRepo.On("GetPending", mock.Anything, "tenant-1", "appr-1").
			Return(pendingRecord("appr-1", "btc-halving"), nil)

		_, err := svc.Resolve(ctx, superActor, "appr-1", Decision("defer"), "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "approve or reject")
	})
}

func TestApprovalService_Resolve_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected update reverts to the hub snapshot", func(t *testing.T) {
		svc, knowledgeRepo, approvalRepo := newApprovalFixture(&fakeHubClient{})

		rec := pendingRecord("appr-1", "btc-halving")
		rec.ChangeType = domain.ChangeTypeUpdate
		rec.RemoteDocID = "doc-1"
		rec.OriginalData = &domain.KnowledgeSnapshot{
			ID:       "btc-halving",
			Title:    "The Halving",
			Content:  "Block reward halves every 210,000 blocks.",
			Category: "economics",
		}

		item := approvedSeedItem("btc-halving")
		item.Title = "The Halving, Revised"
		item.ApprovalStatus = domain.ApprovalStatusPending
		item.PendingApprovalID = "appr-1"

		resolved := pendingRecord("appr-1", "btc-halving")
		resolved.Status = domain.ApprovalRecordRejected

		approvalRepo.On("GetPending", mock.Anything, "tenant-1", "appr-1").Return(rec, nil)
		approvalRepo.On("MarkResolved", mock.Anything, "tenant-1", "appr-1",
			domain.ApprovalRecordRejected, "key-super", "not yet").Return(nil)
		knowledgeRepo.On("GetByID", mock.Anything, "tenant-1", "btc-halving").Return(item, nil)
		knowledgeRepo.On("Update", mock.Anything, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
			return k.Title == "The Halving" &&
				k.ApprovalStatus == domain.ApprovalStatusApproved &&
				k.PendingApprovalID == ""
		})).Return(nil)
		approvalRepo.On("GetByID", mock.Anything, "tenant-1", "appr-1").Return(resolved, nil)

		out, err := svc.Resolve(ctx, superActor, "appr-1", DecisionReject, "not yet")

		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalRecordRejected, out.Status)
		knowledgeRepo.AssertExpectations(t)
	})

	t.Run("rejected create stays rejected with content intact", func(t *testing.T) {
		svc, knowledgeRepo, approvalRepo := newApprovalFixture(&fakeHubClient{})

		rec := pendingRecord("appr-1", "btc-halving")
		item := draftItem("btc-halving")
		item.ApprovalStatus = domain.ApprovalStatusPending
		item.PendingApprovalID = "appr-1"

		resolved := pendingRecord("appr-1", "btc-halving")
		resolved.Status = domain.ApprovalRecordRejected

		approvalRepo.On("GetPending", mock.Anything, "tenant-1", "appr-1").Return(rec, nil)
		approvalRepo.On("MarkResolved", mock.Anything, "tenant-1", "appr-1",
			domain.ApprovalRecordRejected, "key-super", "").Return(nil)
		knowledgeRepo.On("GetByID", mock.Anything, "tenant-1", "btc-halving").Return(item, nil)
		knowledgeRepo.On("Update", mock.Anything, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
			return k.ApprovalStatus == domain.ApprovalStatusRejected &&
				k.PendingApprovalID == "" &&
				k.Title == "The Halving"
		})).Return(nil)
		approvalRepo.On("GetByID", mock.Anything, "tenant-1", "appr-1").Return(resolved, nil)

		out, err := svc.Resolve(ctx, superActor, "appr-1", DecisionReject, "")

		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalRecordRejected, out.Status)
	})
}

func TestApprovalService_ListPending(t *testing.T) {
	svc, _, approvalRepo := newApprovalFixture(&fakeHubClient{})

	records := []*domain.ApprovalRecord{pendingRecord("appr-1", "a"), pendingRecord("appr-2", "b")}
	approvalRepo.On("ListPending", mock.Anything, "tenant-1").Return(records, nil)

	out, err := svc.ListPending(context.Background(), superActor)

	require.NoError(t, err)
	assert.Len(t, out, 2)
}
