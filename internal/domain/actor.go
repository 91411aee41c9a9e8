package domain

// Role is the capability level attached to an API key.
type Role string

const (
	// RoleEditor may read and edit tenant knowledge.
	RoleEditor Role = "editor"
	// RoleAdmin may additionally submit drafts for approval and deactivate
	// tenant-original items.
	RoleAdmin Role = "admin"
	// RoleSuperReviewer may resolve pending approvals, deactivate seed
	// items, and push directly to the hub.
	RoleSuperReviewer Role = "super_reviewer"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID       string
	TenantID string
	Role     Role
}

// IsValidRole checks whether r is a declared role.
func IsValidRole(r Role) bool {
	switch r {
	case RoleEditor, RoleAdmin, RoleSuperReviewer:
		return true
	}
	return false
}

// CanEdit reports whether the role may mutate knowledge content.
func (r Role) CanEdit() bool {
	return r == RoleEditor || r == RoleAdmin || r == RoleSuperReviewer
}

// CanSubmit reports whether the role may submit drafts for approval.
func (r Role) CanSubmit() bool {
	return r == RoleAdmin || r == RoleSuperReviewer
}

// CanReview reports whether the role may approve or reject pending records.
func (r Role) CanReview() bool {
	return r == RoleSuperReviewer
}

// CanDeactivate reports whether the role may deactivate the given item.
// Seed items require the super-reviewer capability; deactivation bypasses
// the approval queue but never the role guard.
func (r Role) CanDeactivate(item *KnowledgeItem) bool {
	if item.IsSeed() {
		return r == RoleSuperReviewer
	}
	return r.CanSubmit()
}

// CanPush reports whether the role may push directly to the hub, bypassing
// review.
func (r Role) CanPush() bool {
	return r == RoleSuperReviewer
}
