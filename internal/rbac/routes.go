package rbac

import "strings"

// RouteEntry maps a path pattern to the roles allowed on it. A pattern is
// either an exact path or a prefix wildcard ("/users/*" matches every
// descendant of /users but not /users itself).
type RouteEntry struct {
	Pattern string
	Allowed []Role
}

// RouteTable is an ordered permission table consulted first by exact match,
// then by longest prefix wildcard.
type RouteTable []RouteEntry

// Routes is the single declarative permission table consulted by the guard.
// Paths not listed here are open to any authenticated, approved actor, so
// every new protected route must be added explicitly or it is reachable by
// all roles.
var Routes = RouteTable{
	{"/users", []Role{RoleSuperadmin}},
	{"/users/*", []Role{RoleSuperadmin}},
	{"/students", []Role{RoleTeacher, RoleHeadTeaching, RoleSuperadmin}},
	{"/students/*", []Role{RoleTeacher, RoleHeadTeaching, RoleSuperadmin}},
	{"/lessons", []Role{RoleTeacher, RoleHeadTeaching, RoleSuperadmin}},
	{"/lessons/*", []Role{RoleTeacher, RoleHeadTeaching, RoleSuperadmin}},
	{"/evaluations", []Role{RoleTeacher, RoleHeadTeaching, RoleSuperadmin}},
	{"/evaluations/*", []Role{RoleTeacher, RoleHeadTeaching, RoleSuperadmin}},
	{"/leads", []Role{RoleSales, RoleHeadSales, RoleSuperadmin}},
	{"/leads/*", []Role{RoleSales, RoleHeadSales, RoleSuperadmin}},
	{"/reports", []Role{RoleHeadTeaching, RoleHeadSales, RoleSuperadmin}},
	{"/reports/*", []Role{RoleHeadTeaching, RoleHeadSales, RoleSuperadmin}},
	{"/settings", []Role{RoleHeadTeaching, RoleHeadSales, RoleSuperadmin}},
	{"/settings/*", []Role{RoleHeadTeaching, RoleHeadSales, RoleSuperadmin}},
	{"/sales", []Role{RoleSales, RoleHeadSales}},
	{"/sales/*", []Role{RoleSales, RoleHeadSales}},
	{"/tariffs", []Role{RoleSuperadmin}},
}

// Resolve returns the allowed-role set for path, or ok=false when the path
// is unlisted. Exact matches win over wildcards; among wildcard matches the
// longest prefix wins, with declaration order breaking ties.
func (t RouteTable) Resolve(path string) ([]Role, bool) {
	for _, e := range t {
		if e.Pattern == path {
			return e.Allowed, true
		}
	}

	var (
		best    []Role
		bestLen = -1
	)
	for _, e := range t {
		prefix, ok := strings.CutSuffix(e.Pattern, "/*")
		if !ok {
			continue
		}
		// "/users/*" matches "/users/123" but never bare "/users".
		if !strings.HasPrefix(path, prefix+"/") {
			continue
		}
		if len(prefix) > bestLen {
			best = e.Allowed
			bestLen = len(prefix)
		}
	}
	if bestLen >= 0 {
		return best, true
	}
	return nil, false
}

// CanAccess reports whether role may visit path. Unlisted paths are open to
// every role; superadmin passes every listed path regardless of its declared
// role set.
func (t RouteTable) CanAccess(role Role, path string) bool {
	allowed, ok := t.Resolve(path)
	if !ok {
		return true
	}
	if IsAdmin(role) {
		return true
	}
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// ResolvePermission resolves path against the application route table.
func ResolvePermission(path string) ([]Role, bool) {
	return Routes.Resolve(path)
}

// CanAccess checks role against the application route table.
func CanAccess(role Role, path string) bool {
	return Routes.CanAccess(role, path)
}
