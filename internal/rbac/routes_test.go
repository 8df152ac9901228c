package rbac_test

import (
	"strings"
	"testing"

	"shiksha/internal/rbac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePermissionExactBeatsWildcard(t *testing.T) {
	allowed, ok := rbac.ResolvePermission("/users")
	require.True(t, ok)
	assert.Equal(t, []rbac.Role{rbac.RoleSuperadmin}, allowed)

	allowed, ok = rbac.ResolvePermission("/users/42")
	require.True(t, ok)
	assert.Equal(t, []rbac.Role{rbac.RoleSuperadmin}, allowed)
}

func TestResolvePermissionDeterministic(t *testing.T) {
	first, ok1 := rbac.ResolvePermission("/students/9/payments")
	second, ok2 := rbac.ResolvePermission("/students/9/payments")
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestResolvePermissionUnlisted(t *testing.T) {
	_, ok := rbac.ResolvePermission("/unlisted-path")
	assert.False(t, ok)

	// "/tariffs" has no wildcard entry, so its descendants are unlisted.
	_, ok = rbac.ResolvePermission("/tariffs/3")
	assert.False(t, ok)
}

func TestWildcardDoesNotMatchBarePrefix(t *testing.T) {
	table := rbac.RouteTable{
		{Pattern: "/secret/*", Allowed: []rbac.Role{rbac.RoleSuperadmin}},
	}

	// Only the descendants are covered; the bare prefix needs its own entry.
	assert.True(t, table.CanAccess(rbac.RoleSales, "/secret"))
	assert.False(t, table.CanAccess(rbac.RoleSales, "/secret/x"))
}

func TestLongestPrefixWins(t *testing.T) {
	table := rbac.RouteTable{
		{Pattern: "/a/*", Allowed: []rbac.Role{rbac.RoleSuperadmin}},
		{Pattern: "/a/b/*", Allowed: []rbac.Role{rbac.RoleTeacher}},
	}

	allowed, ok := table.Resolve("/a/b/c")
	require.True(t, ok)
	assert.Equal(t, []rbac.Role{rbac.RoleTeacher}, allowed)

	allowed, ok = table.Resolve("/a/x")
	require.True(t, ok)
	assert.Equal(t, []rbac.Role{rbac.RoleSuperadmin}, allowed)
}

func TestCanAccess(t *testing.T) {
	assert.False(t, rbac.CanAccess(rbac.RoleSales, "/users/123"))
	assert.True(t, rbac.CanAccess(rbac.RoleSuperadmin, "/users/123"))
	assert.True(t, rbac.CanAccess(rbac.RoleSales, "/unlisted-path"))

	// Sales staff work under /sales, not /students.
	assert.False(t, rbac.CanAccess(rbac.RoleSales, "/students"))
	assert.True(t, rbac.CanAccess(rbac.RoleSales, "/sales/students"))
	assert.True(t, rbac.CanAccess(rbac.RoleTeacher, "/students"))
}

func TestSuperadminPassesEveryEntry(t *testing.T) {
	for _, e := range rbac.Routes {
		probe := e.Pattern
		if prefix, ok := strings.CutSuffix(e.Pattern, "/*"); ok {
			probe = prefix + "/probe"
		}
		assert.True(t, rbac.CanAccess(rbac.RoleSuperadmin, probe),
			"superadmin blocked on %s", probe)
	}
}
