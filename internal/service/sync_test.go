package service

import (
	"context"
	"testing"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func hubDoc(id, slug string, version int64) hub.Doc {
	return hub.Doc{
		ID:          id,
		Slug:        slug,
		TenantScope: "scope-1",
		Domain:      domain.DomainCrypto,
		Data: domain.KnowledgeSnapshot{
			ID:       slug,
			Title:    "Hub Title " + slug,
			Content:  "Hub content for " + slug,
			Category: "economics",
		},
		Version:  version,
		IsActive: true,
	}
}

func TestSyncService_Pull(t *testing.T) {
	ctx := context.Background()

	t.Run("editor cannot pull", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewSyncService(repo, &fakeHubClient{}, "scope-1")

		_, err := svc.Pull(ctx, editorActor)

		assert.ErrorIs(t, err, domain.ErrRoleForbidden)
	})

	t.Run("unknown hub document becomes an approved seed item", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		hubClient := &fakeHubClient{docs: []hub.Doc{hubDoc("doc-1", "btc-halving", 4)}}
		svc := NewSyncService(repo, hubClient, "scope-1")

		repo.On("GetByRemoteDocID", mock.Anything, "tenant-1", "doc-1").Return(nil, domain.ErrItemNotFound)
		repo.On("GetByID", mock.Anything, "tenant-1", "btc-halving").Return(nil, domain.ErrItemNotFound)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
			return k.ID == "btc-halving" &&
				k.Origin == domain.OriginSeed &&
				k.ApprovalStatus == domain.ApprovalStatusApproved &&
				k.RemoteDocID == "doc-1" &&
				k.Version == 4 &&
				k.HubSnapshot != nil
		})).Return(nil)

		result, err := svc.Pull(ctx, adminActor)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Zero(t, result.Updated)
		repo.AssertExpectations(t)
	})

	t.Run("slug collision with an unlinked local item is a conflict", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		hubClient := &fakeHubClient{docs: []hub.Doc{hubDoc("doc-1", "btc-halving", 4)}}
		svc := NewSyncService(repo, hubClient, "scope-1")

		local := draftItem("btc-halving") // RemoteDocID empty
		repo.On("GetByRemoteDocID", mock.Anything, "tenant-1", "doc-1").Return(nil, domain.ErrItemNotFound)
		repo.On("GetByID", mock.Anything, "tenant-1", "btc-halving").Return(local, nil)

		_, err := svc.Pull(ctx, adminActor)

		require.Error(t, err)
		var derr *domain.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, domain.ErrCodeAlreadyExists, derr.Code)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("items with local work in flight are skipped", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		hubClient := &fakeHubClient{docs: []hub.Doc{
			hubDoc("doc-1", "draft-item", 9),
			hubDoc("doc-2", "pending-item", 9),
		}}
		svc := NewSyncService(repo, hubClient, "scope-1")

		draft := approvedSeedItem("draft-item")
		draft.RemoteDocID = "doc-1"
		draft.ApprovalStatus = domain.ApprovalStatusDraft
		pending := approvedSeedItem("pending-item")
		pending.RemoteDocID = "doc-2"
		pending.ApprovalStatus = domain.ApprovalStatusPending

		repo.On("GetByRemoteDocID", mock.Anything, "tenant-1", "doc-1").Return(draft, nil)
		repo.On("GetByRemoteDocID", mock.Anything, "tenant-1", "doc-2").Return(pending, nil)

		result, err := svc.Pull(ctx, adminActor)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Skipped)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("stale hub version is skipped", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		hubClient := &fakeHubClient{docs: []hub.Doc{hubDoc("doc-1", "btc-halving", 3)}}
		svc := NewSyncService(repo, hubClient, "scope-1")

		local := approvedSeedItem("btc-halving") // Version 3
		repo.On("GetByRemoteDocID", mock.Anything, "tenant-1", "doc-1").Return(local, nil)

		result, err := svc.Pull(ctx, adminActor)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("newer hub version updates the settled local item", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		hubClient := &fakeHubClient{docs: []hub.Doc{hubDoc("doc-1", "btc-halving", 5)}}
		svc := NewSyncService(repo, hubClient, "scope-1")

		local := approvedSeedItem("btc-halving") // Version 3
		repo.On("GetByRemoteDocID", mock.Anything, "tenant-1", "doc-1").Return(local, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
			return k.Version == 5 &&
				k.Title == "Hub Title btc-halving" &&
				k.ApprovalStatus == domain.ApprovalStatusApproved &&
				k.HubSnapshot != nil &&
				k.HubSnapshot.Title == "Hub Title btc-halving"
		})).Return(nil)

		result, err := svc.Pull(ctx, adminActor)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)
		repo.AssertExpectations(t)
	})

	t.Run("hub fetch failure aborts the pull", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewSyncService(repo, &fakeHubClient{fetchErr: domain.ErrHubUnauthorized}, "scope-1")

		_, err := svc.Pull(ctx, adminActor)

		assert.ErrorIs(t, err, domain.ErrHubUnauthorized)
	})
}

func TestSyncService_Push(t *testing.T) {
	ctx := context.Background()

	approvedTenantItem := func(id string) *domain.KnowledgeItem {
		item := draftItem(id)
		item.ApprovalStatus = domain.ApprovalStatusApproved
		return item
	}

	t.Run("admin cannot push", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		svc := NewSyncService(repo, &fakeHubClient{}, "scope-1")

		_, err := svc.Push(ctx, adminActor, false)

		assert.ErrorIs(t, err, domain.ErrReviewerRoleRequired)
	})

	t.Run("unlinked approved items are created on the hub", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		hubClient := &fakeHubClient{upsertResult: &hub.UpsertResult{ID: "doc-7", Version: 1}}
		svc := NewSyncService(repo, hubClient, "scope-1")

		item := approvedTenantItem("btc-halving")
		repo.On("ListByStatus", mock.Anything, "tenant-1", domain.ApprovalStatusApproved).
			Return([]*domain.KnowledgeItem{item}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(k *domain.KnowledgeItem) bool {
			return k.RemoteDocID == "doc-7" && k.Version == 1 && k.HubSnapshot != nil
		})).Return(nil)

		result, err := svc.Push(ctx, superActor, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Zero(t, result.Updated)
		assert.Empty(t, result.Errors)
		require.Len(t, hubClient.upserted, 1)
		assert.Equal(t, "btc-halving", hubClient.upserted[0].Slug)
		repo.AssertExpectations(t)
	})

	t.Run("linked items are skipped unless forced", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		hubClient := &fakeHubClient{}
		svc := NewSyncService(repo, hubClient, "scope-1")

		repo.On("ListByStatus", mock.Anything, "tenant-1", domain.ApprovalStatusApproved).
			Return([]*domain.KnowledgeItem{approvedSeedItem("btc-halving")}, nil)

		result, err := svc.Push(ctx, superActor, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Empty(t, hubClient.upserted)
	})

	t.Run("force re-pushes linked items as updates", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		hubClient := &fakeHubClient{upsertResult: &hub.UpsertResult{ID: "doc-1", Version: 4}}
		svc := NewSyncService(repo, hubClient, "scope-1")

		repo.On("ListByStatus", mock.Anything, "tenant-1", domain.ApprovalStatusApproved).
			Return([]*domain.KnowledgeItem{approvedSeedItem("btc-halving")}, nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.Push(ctx, superActor, true)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)
		require.Len(t, hubClient.upserted, 1)
		assert.Equal(t, "doc-1", hubClient.upserted[0].ID)
	})

	t.Run("remote slug collision skips the unlinked item", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		hubClient := &fakeHubClient{docs: []hub.Doc{hubDoc("doc-x", "btc-halving", 2)}}
		svc := NewSyncService(repo, hubClient, "scope-1")

		repo.On("ListByStatus", mock.Anything, "tenant-1", domain.ApprovalStatusApproved).
			Return([]*domain.KnowledgeItem{approvedTenantItem("btc-halving")}, nil)

		result, err := svc.Push(ctx, superActor, false)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Empty(t, hubClient.upserted)
	})

	t.Run("per-item hub failures are collected, not fatal", func(t *testing.T) {
		repo := new(MockKnowledgeRepository)
		hubClient := &fakeHubClient{upsertErr: domain.ErrHubSlugConflict}
		svc := NewSyncService(repo, hubClient, "scope-1")

		repo.On("ListByStatus", mock.Anything, "tenant-1", domain.ApprovalStatusApproved).
			Return([]*domain.KnowledgeItem{approvedTenantItem("a"), approvedTenantItem("b")}, nil)

		result, err := svc.Push(ctx, superActor, false)

		require.NoError(t, err)
		require.Len(t, result.Errors, 2)
		assert.Contains(t, result.Errors[0], "a: ")
		assert.Contains(t, result.Errors[1], "b: ")
		assert.Zero(t, result.Created)
		repo.AssertNotCalled(t, "Update")
	})
}
