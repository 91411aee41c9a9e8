package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeRemoteSync       = "REMOTE_SYNC_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Not found errors
var (
	ErrItemNotFound     = NewDomainError(ErrCodeNotFound, "knowledge item not found")
	ErrApprovalNotFound = NewDomainError(ErrCodeNotFound, "approval record not found")
	ErrTenantNotFound   = NewDomainError(ErrCodeNotFound, "tenant not found")
	ErrAPIKeyNotFound   = NewDomainError(ErrCodeNotFound, "api key not found")

	// ErrApprovalAlreadyProcessed is returned when resolving a record that is
	// no longer pending. Resolution must be a no-op in that case so duplicate
	// approve/reject submissions never mutate an item twice.
	ErrApprovalAlreadyProcessed = NewDomainError(ErrCodeNotFound, "approval record already processed")
)

// Already exists errors
var (
	ErrItemAlreadyExists      = NewDomainError(ErrCodeAlreadyExists, "knowledge item already exists")
	ErrPendingApprovalExists  = NewDomainError(ErrCodeAlreadyExists, "item already has a pending approval")
	ErrTenantAlreadyExists    = NewDomainError(ErrCodeAlreadyExists, "tenant already exists")
	ErrAPIKeyAlreadyExists    = NewDomainError(ErrCodeAlreadyExists, "api key already exists")
)

// Authorization errors
var (
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")

	ErrReviewerRoleRequired = NewDomainError(ErrCodeForbidden, "super-reviewer role required")
	ErrRoleForbidden        = NewDomainError(ErrCodeForbidden, "role does not permit this operation")
)

// Operation errors
var (
	ErrNotSubmittable = NewDomainError(ErrCodeInvalidOperation, "only draft items can be submitted for approval")
	ErrItemInactive   = NewDomainError(ErrCodeInvalidOperation, "knowledge item is inactive")
)

// Remote sync errors
var (
	ErrHubUnavailable  = NewDomainError(ErrCodeRemoteSync, "hub request failed")
	ErrHubUnauthorized = NewDomainError(ErrCodeRemoteSync, "hub rejected service credentials")
	ErrHubSlugConflict = NewDomainError(ErrCodeRemoteSync, "hub already holds a different document for this slug")
)
