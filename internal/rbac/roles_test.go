package rbac_test

import (
	"testing"

	"shiksha/internal/rbac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range rbac.AllRoles {
		parsed, err := rbac.ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := rbac.ParseRole("intern")
	assert.Error(t, err)
	_, err = rbac.ParseRole("")
	assert.Error(t, err)
}

func TestGroupMembership(t *testing.T) {
	tests := []struct {
		role       rbac.Role
		teaching   bool
		sales      bool
		management bool
		admin      bool
	}{
		{rbac.RoleSuperadmin, false, false, true, true},
		{rbac.RoleHeadSales, false, true, true, false},
		{rbac.RoleSales, false, true, false, false},
		{rbac.RoleHeadTeaching, true, false, true, false},
		{rbac.RoleTeacher, true, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.teaching, rbac.IsTeachingStaff(tt.role))
			assert.Equal(t, tt.sales, rbac.IsSalesStaff(tt.role))
			assert.Equal(t, tt.management, rbac.IsManagement(tt.role))
			assert.Equal(t, tt.admin, rbac.IsAdmin(tt.role))
		})
	}
}

func TestGroupMembershipCoversEveryRole(t *testing.T) {
	// Every role must land in at least one group so that no route in the
	// table is accidentally unreachable for a valid role.
	for _, r := range rbac.AllRoles {
		inAny := rbac.IsTeachingStaff(r) || rbac.IsSalesStaff(r) ||
			rbac.IsManagement(r) || rbac.IsAdmin(r)
		assert.True(t, inAny, "role %s belongs to no group", r)
	}
}
