package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/pagination"
	"github.com/iQube-Protocol/aigentjmo-sub000/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const knowledgeColumns = `tenant_id, id, domain, title, content, section, category,
	keywords, cross_tags, connections, source, origin, approval_status,
	pending_approval_id, remote_doc_id, version, is_active, hub_snapshot, created_at, updated_at`

type KnowledgeRepository struct {
	db dbtx
}

func NewKnowledgeRepository(pool *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: pool}
}

func NewKnowledgeRepositoryWithTx(tx pgx.Tx) *KnowledgeRepository {
	return &KnowledgeRepository{db: tx}
}

func (r *KnowledgeRepository) Create(ctx context.Context, k *domain.KnowledgeItem) error {
	hubSnapshot, err := marshalSnapshot(k.HubSnapshot)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO knowledge_items (`+knowledgeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		k.TenantID, k.ID, k.Domain, k.Title, k.Content, nullableString(k.Section), k.Category,
		k.Keywords, k.CrossTags, k.Connections, nullableString(k.Source), k.Origin, k.ApprovalStatus,
		nullableString(k.PendingApprovalID), nullableString(k.RemoteDocID), k.Version, k.IsActive,
		hubSnapshot, k.CreatedAt, k.UpdatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrItemAlreadyExists
	}
	return err
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.KnowledgeItem, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge_items WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	return scanKnowledgeItem(row)
}

func (r *KnowledgeRepository) GetByRemoteDocID(ctx context.Context, tenantID, remoteDocID string) (*domain.KnowledgeItem, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge_items WHERE tenant_id = $1 AND remote_doc_id = $2`,
		tenantID, remoteDocID,
	)
	return scanKnowledgeItem(row)
}

func (r *KnowledgeRepository) Update(ctx context.Context, k *domain.KnowledgeItem) error {
	hubSnapshot, err := marshalSnapshot(k.HubSnapshot)
	if err != nil {
		return err
	}
	k.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_items SET title = $1, content = $2, section = $3, category = $4,
		 keywords = $5, cross_tags = $6, connections = $7, source = $8, origin = $9,
		 approval_status = $10, pending_approval_id = $11, remote_doc_id = $12,
		 version = $13, is_active = $14, hub_snapshot = $15, updated_at = $16
		 WHERE tenant_id = $17 AND id = $18`,
		k.Title, k.Content, nullableString(k.Section), k.Category,
		k.Keywords, k.CrossTags, k.Connections, nullableString(k.Source), k.Origin,
		k.ApprovalStatus, nullableString(k.PendingApprovalID), nullableString(k.RemoteDocID),
		k.Version, k.IsActive, hubSnapshot, k.UpdatedAt,
		k.TenantID, k.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *KnowledgeRepository) ListActiveByDomain(ctx context.Context, tenantID string, dom domain.Domain) ([]*domain.KnowledgeItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge_items
		 WHERE tenant_id = $1 AND domain = $2 AND is_active ORDER BY id`,
		tenantID, dom,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledgeRows(rows)
}

func (r *KnowledgeRepository) ListActive(ctx context.Context, tenantID string) ([]*domain.KnowledgeItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge_items
		 WHERE tenant_id = $1 AND is_active ORDER BY domain, id`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledgeRows(rows)
}

func (r *KnowledgeRepository) ListByStatus(ctx context.Context, tenantID string, status domain.ApprovalStatus) ([]*domain.KnowledgeItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge_items
		 WHERE tenant_id = $1 AND approval_status = $2 AND is_active ORDER BY updated_at DESC`,
		tenantID, status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledgeRows(rows)
}

func (r *KnowledgeRepository) ListWithCursor(ctx context.Context, tenantID string, cursor *pagination.Cursor, limit int) (*service.KnowledgePageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+knowledgeColumns+` FROM knowledge_items
			 WHERE tenant_id = $1 AND (updated_at, id) < ($2, $3)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $4`,
			tenantID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+knowledgeColumns+` FROM knowledge_items
			 WHERE tenant_id = $1
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $2`,
			tenantID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanKnowledgeRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.UpdatedAt)
	}

	return &service.KnowledgePageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKnowledgeItem(row rowScanner) (*domain.KnowledgeItem, error) {
	var k domain.KnowledgeItem
	var section, source, pendingApprovalID, remoteDocID *string
	var hubSnapshot []byte
	err := row.Scan(
		&k.TenantID, &k.ID, &k.Domain, &k.Title, &k.Content, &section, &k.Category,
		&k.Keywords, &k.CrossTags, &k.Connections, &source, &k.Origin, &k.ApprovalStatus,
		&pendingApprovalID, &remoteDocID, &k.Version, &k.IsActive, &hubSnapshot,
		&k.CreatedAt, &k.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	if section != nil {
		k.Section = *section
	}
	if source != nil {
		k.Source = *source
	}
	if pendingApprovalID != nil {
		k.PendingApprovalID = *pendingApprovalID
	}
	if remoteDocID != nil {
		k.RemoteDocID = *remoteDocID
	}
	if hubSnapshot != nil {
		var snap domain.KnowledgeSnapshot
		if err := json.Unmarshal(hubSnapshot, &snap); err != nil {
			return nil, err
		}
		k.HubSnapshot = &snap
	}
	return &k, nil
}

func scanKnowledgeRows(rows pgx.Rows) ([]*domain.KnowledgeItem, error) {
	var results []*domain.KnowledgeItem
	for rows.Next() {
		k, err := scanKnowledgeItem(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, k)
	}
	return results, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func marshalSnapshot(s *domain.KnowledgeSnapshot) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}
