package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/hub"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/pagination"
)

// KnowledgeRepositoryInterface defines the repository interface for
// knowledge item persistence.
type KnowledgeRepositoryInterface interface {
	Create(ctx context.Context, k *domain.KnowledgeItem) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.KnowledgeItem, error)
	GetByRemoteDocID(ctx context.Context, tenantID, remoteDocID string) (*domain.KnowledgeItem, error)
	Update(ctx context.Context, k *domain.KnowledgeItem) error
	ListActiveByDomain(ctx context.Context, tenantID string, dom domain.Domain) ([]*domain.KnowledgeItem, error)
	ListActive(ctx context.Context, tenantID string) ([]*domain.KnowledgeItem, error)
	ListByStatus(ctx context.Context, tenantID string, status domain.ApprovalStatus) ([]*domain.KnowledgeItem, error)
	ListWithCursor(ctx context.Context, tenantID string, cursor *pagination.Cursor, limit int) (*KnowledgePageResult, error)
}

// ApprovalRepositoryInterface defines the repository interface for approval
// record persistence.
type ApprovalRepositoryInterface interface {
	Create(ctx context.Context, rec *domain.ApprovalRecord) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.ApprovalRecord, error)
	GetPending(ctx context.Context, tenantID, id string) (*domain.ApprovalRecord, error)
	ListPending(ctx context.Context, tenantID string) ([]*domain.ApprovalRecord, error)
	MarkResolved(ctx context.Context, tenantID, id string, status domain.ApprovalRecordStatus, reviewedBy, notes string) error
}

// KnowledgePageResult is one page of a cursor-paginated item listing.
type KnowledgePageResult struct {
	Items      []*domain.KnowledgeItem
	NextCursor string
	HasMore    bool
}

// TxRepositories exposes repositories bound to one transaction.
type TxRepositories interface {
	Knowledge() KnowledgeRepositoryInterface
	Approvals() ApprovalRepositoryInterface
}

// TxRunnerInterface runs a function inside a database transaction.
type TxRunnerInterface interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

// HubClientInterface is the remote Core Hub boundary.
type HubClientInterface interface {
	Upsert(ctx context.Context, doc hub.Doc) (*hub.UpsertResult, error)
	FetchActive(ctx context.Context, tenantScope string) ([]hub.Doc, error)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}
