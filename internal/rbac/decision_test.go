package rbac_test

import (
	"testing"

	"shiksha/internal/rbac"

	"github.com/stretchr/testify/assert"
)

func TestDecideUnauthenticated(t *testing.T) {
	s := rbac.GuardState{}

	// Protected targets always bounce to login, whatever else the state says.
	assert.Equal(t, rbac.RedirectLogin, rbac.Decide(s, "/students"))
	assert.Equal(t, rbac.RedirectLogin, rbac.Decide(s, "/users/5"))

	s.Approved = true // meaningless without authentication
	assert.Equal(t, rbac.RedirectLogin, rbac.Decide(s, "/students"))

	// Public targets stay reachable.
	assert.Equal(t, rbac.Allow, rbac.Decide(s, rbac.PathLogin))
	assert.Equal(t, rbac.Allow, rbac.Decide(s, rbac.PathRegister))
	assert.Equal(t, rbac.Allow, rbac.Decide(s, rbac.PathHome))
}

func TestDecideDefersUntilProfileLoads(t *testing.T) {
	s := rbac.GuardState{Authenticated: true}

	assert.Equal(t, rbac.Defer, rbac.Decide(s, "/students"))
	// Public pages also wait: redirecting before the approval status is
	// known would guess wrong half the time.
	assert.Equal(t, rbac.Defer, rbac.Decide(s, rbac.PathLogin))
}

func TestDecideApprovalGate(t *testing.T) {
	s := rbac.GuardState{
		Authenticated: true,
		ProfileLoaded: true,
		Approved:      false,
		Role:          rbac.RoleTeacher,
	}

	assert.Equal(t, rbac.RedirectPending, rbac.Decide(s, "/students"))
	assert.Equal(t, rbac.RedirectPending, rbac.Decide(s, rbac.PathLogin))
	assert.Equal(t, rbac.Allow, rbac.Decide(s, rbac.PathPending))
}

func TestDecideApprovedBouncesOffPendingPage(t *testing.T) {
	s := rbac.GuardState{
		Authenticated: true,
		ProfileLoaded: true,
		Approved:      true,
		Role:          rbac.RoleTeacher,
	}

	assert.Equal(t, rbac.RedirectHome, rbac.Decide(s, rbac.PathPending))
}

func TestDecideApprovedOnAuthPages(t *testing.T) {
	s := rbac.GuardState{
		Authenticated: true,
		ProfileLoaded: true,
		Approved:      true,
		Role:          rbac.RoleSales,
	}

	assert.Equal(t, rbac.RedirectHome, rbac.Decide(s, rbac.PathLogin))
	assert.Equal(t, rbac.RedirectHome, rbac.Decide(s, rbac.PathRegister))
	assert.Equal(t, rbac.Allow, rbac.Decide(s, rbac.PathHome))
	assert.Equal(t, rbac.Allow, rbac.Decide(s, rbac.PathForbidden))
}

func TestDecideRoleCheck(t *testing.T) {
	sales := rbac.GuardState{
		Authenticated: true,
		ProfileLoaded: true,
		Approved:      true,
		Role:          rbac.RoleSales,
	}

	// Sales actors have their own namespace; /students belongs to teaching.
	assert.Equal(t, rbac.RedirectForbidden, rbac.Decide(sales, "/students"))
	assert.Equal(t, rbac.Allow, rbac.Decide(sales, "/sales/students"))
	assert.Equal(t, rbac.Allow, rbac.Decide(sales, "/leads/7"))
	assert.Equal(t, rbac.Allow, rbac.Decide(sales, "/unlisted-path"))

	admin := sales
	admin.Role = rbac.RoleSuperadmin
	for _, path := range []string{"/students", "/sales/x", "/users/1", "/tariffs", "/reports/q1"} {
		assert.Equal(t, rbac.Allow, rbac.Decide(admin, path), "path %s", path)
	}
}

func TestDecideIsIdempotent(t *testing.T) {
	s := rbac.GuardState{Authenticated: true, ProfileLoaded: true, Approved: true, Role: rbac.RoleTeacher}
	first := rbac.Decide(s, "/students")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, rbac.Decide(s, "/students"))
	}
}
