package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleEditor))
	assert.True(t, IsValidRole(RoleAdmin))
	assert.True(t, IsValidRole(RoleSuperReviewer))
	assert.False(t, IsValidRole(Role("owner")))
	assert.False(t, IsValidRole(Role("")))
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role      Role
		canEdit   bool
		canSubmit bool
		canReview bool
		canPush   bool
	}{
		{RoleEditor, true, false, false, false},
		{RoleAdmin, true, true, false, false},
		{RoleSuperReviewer, true, true, true, true},
		{Role("unknown"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.canEdit, tt.role.CanEdit())
			assert.Equal(t, tt.canSubmit, tt.role.CanSubmit())
			assert.Equal(t, tt.canReview, tt.role.CanReview())
			assert.Equal(t, tt.canPush, tt.role.CanPush())
		})
	}
}

func TestCanDeactivate(t *testing.T) {
	seed := &KnowledgeItem{Origin: OriginSeed}
	tenant := &KnowledgeItem{Origin: OriginTenant}

	tests := []struct {
		name string
		role Role
		item *KnowledgeItem
		want bool
	}{
		{"editor cannot deactivate tenant item", RoleEditor, tenant, false},
		{"editor cannot deactivate seed item", RoleEditor, seed, false},
		{"admin can deactivate tenant item", RoleAdmin, tenant, true},
		{"admin cannot deactivate seed item", RoleAdmin, seed, false},
		{"super reviewer can deactivate tenant item", RoleSuperReviewer, tenant, true},
		{"super reviewer can deactivate seed item", RoleSuperReviewer, seed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.CanDeactivate(tt.item))
		})
	}
}
