package domain

import "time"

// ChangeType classifies what an approval record proposes: publishing a new
// tenant-original item, or updating an item the hub already holds.
type ChangeType string

const (
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeUpdate ChangeType = "update"
)

// ApprovalRecordStatus is the review lifecycle of an ApprovalRecord.
// Records are never reopened; subsequent edits create a new record.
type ApprovalRecordStatus string

const (
	ApprovalRecordPending  ApprovalRecordStatus = "pending"
	ApprovalRecordApproved ApprovalRecordStatus = "approved"
	ApprovalRecordRejected ApprovalRecordStatus = "rejected"
)

// ApprovalRecord tracks one proposed change to a knowledge item on its way
// into the shared hub. At most one pending record exists per item at a time,
// enforced via the item's PendingApprovalID back-reference.
type ApprovalRecord struct {
	ID            string
	TenantID      string
	LocalRecordID string // owning KnowledgeItem
	RemoteDocID   string // empty until the item first lands in the hub
	ChangeType    ChangeType

	ProposedData KnowledgeSnapshot
	OriginalData *KnowledgeSnapshot // hub's version at submission time, nil for creates

	SubmittedBy string
	SubmittedAt time.Time

	Status        ApprovalRecordStatus
	ReviewedBy    string
	ReviewedAt    *time.Time
	ReviewerNotes string
}

// IsPending reports whether the record is still awaiting review.
func (r *ApprovalRecord) IsPending() bool {
	return r.Status == ApprovalRecordPending
}

// ValidateApprovalRecord validates an ApprovalRecord.
func ValidateApprovalRecord(r *ApprovalRecord) error {
	if r == nil {
		return NewDomainError(ErrCodeValidation, "approval record cannot be nil")
	}
	if r.ID == "" {
		return NewDomainError(ErrCodeValidation, "approval record ID is required")
	}
	if r.TenantID == "" {
		return NewDomainError(ErrCodeValidation, "approval record TenantID is required")
	}
	if r.LocalRecordID == "" {
		return NewDomainError(ErrCodeValidation, "approval record LocalRecordID is required")
	}
	if r.SubmittedBy == "" {
		return NewDomainError(ErrCodeValidation, "approval record SubmittedBy is required")
	}
	switch r.ChangeType {
	case ChangeTypeCreate, ChangeTypeUpdate:
	default:
		return NewDomainError(ErrCodeValidation, "invalid approval change type")
	}
	switch r.Status {
	case ApprovalRecordPending, ApprovalRecordApproved, ApprovalRecordRejected:
	default:
		return NewDomainError(ErrCodeValidation, "invalid approval record status")
	}
	if r.ChangeType == ChangeTypeUpdate && r.OriginalData == nil {
		return NewDomainError(ErrCodeValidation, "update approval requires an original snapshot")
	}
	return nil
}
