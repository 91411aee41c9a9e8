package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/iQube-Protocol/aigentjmo-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const approvalColumns = `id, tenant_id, local_record_id, remote_doc_id, change_type,
	proposed_data, original_data, submitted_by, submitted_at, status,
	reviewed_by, reviewed_at, reviewer_notes`

type ApprovalRepository struct {
	db dbtx
}

func NewApprovalRepository(pool *pgxpool.Pool) *ApprovalRepository {
	return &ApprovalRepository{db: pool}
}

func NewApprovalRepositoryWithTx(tx pgx.Tx) *ApprovalRepository {
	return &ApprovalRepository{db: tx}
}

func (r *ApprovalRepository) Create(ctx context.Context, rec *domain.ApprovalRecord) error {
	proposed, err := json.Marshal(rec.ProposedData)
	if err != nil {
		return err
	}
	var original []byte
	if rec.OriginalData != nil {
		original, err = json.Marshal(rec.OriginalData)
		if err != nil {
			return err
		}
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO approval_records (`+approvalColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.TenantID, rec.LocalRecordID, nullableString(rec.RemoteDocID), rec.ChangeType,
		proposed, original, rec.SubmittedBy, rec.SubmittedAt, rec.Status,
		nullableString(rec.ReviewedBy), rec.ReviewedAt, nullableString(rec.ReviewerNotes),
	)
	return err
}

func (r *ApprovalRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.ApprovalRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+approvalColumns+` FROM approval_records WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	return scanApprovalRecord(row)
}

// GetPending fetches a record only while it is still pending. Resolution of
// an already-resolved record must be a no-op error, so the status filter
// lives in the query, not in caller code.
func (r *ApprovalRepository) GetPending(ctx context.Context, tenantID, id string) (*domain.ApprovalRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+approvalColumns+` FROM approval_records
		 WHERE tenant_id = $1 AND id = $2 AND status = $3`,
		tenantID, id, domain.ApprovalRecordPending,
	)
	rec, err := scanApprovalRecord(row)
	if errors.Is(err, domain.ErrApprovalNotFound) {
		// Distinguish "never existed" from "already processed".
		if _, lookupErr := r.GetByID(ctx, tenantID, id); lookupErr == nil {
			return nil, domain.ErrApprovalAlreadyProcessed
		}
		return nil, domain.ErrApprovalNotFound
	}
	return rec, err
}

func (r *ApprovalRepository) ListPending(ctx context.Context, tenantID string) ([]*domain.ApprovalRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+approvalColumns+` FROM approval_records
		 WHERE tenant_id = $1 AND status = $2 ORDER BY submitted_at`,
		tenantID, domain.ApprovalRecordPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.ApprovalRecord
	for rows.Next() {
		rec, err := scanApprovalRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkResolved transitions a pending record to approved or rejected. The
// status guard in the WHERE clause is the sole mechanism preventing double
// resolution across concurrent sessions.
func (r *ApprovalRepository) MarkResolved(ctx context.Context, tenantID, id string, status domain.ApprovalRecordStatus, reviewedBy, notes string) error {
	now := time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE approval_records
		 SET status = $1, reviewed_by = $2, reviewed_at = $3, reviewer_notes = $4
		 WHERE tenant_id = $5 AND id = $6 AND status = $7`,
		status, reviewedBy, now, nullableString(notes),
		tenantID, id, domain.ApprovalRecordPending,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrApprovalAlreadyProcessed
	}
	return nil
}

func scanApprovalRecord(row rowScanner) (*domain.ApprovalRecord, error) {
	var rec domain.ApprovalRecord
	var remoteDocID, reviewedBy, reviewerNotes *string
	var proposed []byte
	var original []byte
	err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.LocalRecordID, &remoteDocID, &rec.ChangeType,
		&proposed, &original, &rec.SubmittedBy, &rec.SubmittedAt, &rec.Status,
		&reviewedBy, &rec.ReviewedAt, &reviewerNotes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrApprovalNotFound
		}
		return nil, err
	}
	if remoteDocID != nil {
		rec.RemoteDocID = *remoteDocID
	}
	if reviewedBy != nil {
		rec.ReviewedBy = *reviewedBy
	}
	if reviewerNotes != nil {
		rec.ReviewerNotes = *reviewerNotes
	}
	if err := json.Unmarshal(proposed, &rec.ProposedData); err != nil {
		return nil, err
	}
	if original != nil {
		var snap domain.KnowledgeSnapshot
		if err := json.Unmarshal(original, &snap); err != nil {
			return nil, err
		}
		rec.OriginalData = &snap
	}
	return &rec, nil
}
