package service

import (
	"context"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/hub"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/pagination"
	"github.com/stretchr/testify/mock"
)

// MockKnowledgeRepository is a mock implementation of KnowledgeRepositoryInterface
type MockKnowledgeRepository struct {
	mock.Mock
}

func (m *MockKnowledgeRepository) Create(ctx context.Context, k *domain.KnowledgeItem) error {
	args := m.Called(ctx, k)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.KnowledgeItem, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeRepository) GetByRemoteDocID(ctx context.Context, tenantID, remoteDocID string) (*domain.KnowledgeItem, error) {
	args := m.Called(ctx, tenantID, remoteDocID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeRepository) Update(ctx context.Context, k *domain.KnowledgeItem) error {
	args := m.Called(ctx, k)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) ListActiveByDomain(ctx context.Context, tenantID string, dom domain.Domain) ([]*domain.KnowledgeItem, error) {
	args := m.Called(ctx, tenantID, dom)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeRepository) ListActive(ctx context.Context, tenantID string) ([]*domain.KnowledgeItem, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeRepository) ListByStatus(ctx context.Context, tenantID string, status domain.ApprovalStatus) ([]*domain.KnowledgeItem, error) {
	args := m.Called(ctx, tenantID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeRepository) ListWithCursor(ctx context.Context, tenantID string, cursor *pagination.Cursor, limit int) (*KnowledgePageResult, error) {
	args := m.Called(ctx, tenantID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*KnowledgePageResult), args.Error(1)
}

// MockApprovalRepository is a mock implementation of ApprovalRepositoryInterface
type MockApprovalRepository struct {
	mock.Mock
}

func (m *MockApprovalRepository) Create(ctx context.Context, rec *domain.ApprovalRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockApprovalRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.ApprovalRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRecord), args.Error(1)
}

func (m *MockApprovalRepository) GetPending(ctx context.Context, tenantID, id string) (*domain.ApprovalRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRecord), args.Error(1)
}

func (m *MockApprovalRepository) ListPending(ctx context.Context, tenantID string) ([]*domain.ApprovalRecord, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovalRecord), args.Error(1)
}

func (m *MockApprovalRepository) MarkResolved(ctx context.Context, tenantID, id string, status domain.ApprovalRecordStatus, reviewedBy, notes string) error {
	args := m.Called(ctx, tenantID, id, status, reviewedBy, notes)
	return args.Error(0)
}

// MockUUIDGenerator is a mock implementation of UUIDGenerator
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}

// stubTxRepos binds the shared mocks to a fake transaction.
type stubTxRepos struct {
	knowledge KnowledgeRepositoryInterface
	approvals ApprovalRepositoryInterface
}

func (r stubTxRepos) Knowledge() KnowledgeRepositoryInterface { return r.knowledge }
func (r stubTxRepos) Approvals() ApprovalRepositoryInterface  { return r.approvals }

// stubTxRunner executes the callback against the shared mocks without a real
// transaction.
type stubTxRunner struct {
	repos stubTxRepos
	err   error
}

func (t stubTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	if t.err != nil {
		return t.err
	}
	return fn(t.repos)
}

// fakeHubClient records upserts and serves canned fetch results.
type fakeHubClient struct {
	upsertResult *hub.UpsertResult
	upsertErr    error
	docs         []hub.Doc
	fetchErr     error
	upserted     []hub.Doc
}

func (f *fakeHubClient) Upsert(ctx context.Context, doc hub.Doc) (*hub.UpsertResult, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserted = append(f.upserted, doc)
	if f.upsertResult != nil {
		return f.upsertResult, nil
	}
	return &hub.UpsertResult{ID: "hub-" + doc.Slug, Version: doc.Version + 1}, nil
}

func (f *fakeHubClient) FetchActive(ctx context.Context, tenantScope string) ([]hub.Doc, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.docs, nil
}
