package rbac

import "fmt"

// Role is the closed set of actor roles. Every group check in the codebase
// goes through the predicates below, never through role literals.
type Role string

const (
	RoleSuperadmin   Role = "superadmin"
	RoleHeadSales    Role = "head_sales"
	RoleSales        Role = "sales"
	RoleHeadTeaching Role = "head_teaching"
	RoleTeacher      Role = "teacher"
)

// AllRoles lists every valid role, in display order.
var AllRoles = []Role{
	RoleSuperadmin,
	RoleHeadSales,
	RoleSales,
	RoleHeadTeaching,
	RoleTeacher,
}

// ParseRole validates a raw string against the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperadmin, RoleHeadSales, RoleSales, RoleHeadTeaching, RoleTeacher:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsValid reports whether r is one of the declared roles.
func (r Role) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// IsTeachingStaff reports whether r belongs to the teaching group.
func IsTeachingStaff(r Role) bool {
	return r == RoleTeacher || r == RoleHeadTeaching
}

// IsSalesStaff reports whether r belongs to the sales group.
func IsSalesStaff(r Role) bool {
	return r == RoleSales || r == RoleHeadSales
}

// IsManagement reports whether r is a department head or the admin.
func IsManagement(r Role) bool {
	return r == RoleHeadTeaching || r == RoleHeadSales || r == RoleSuperadmin
}

// IsAdmin reports whether r has unconditional access.
func IsAdmin(r Role) bool {
	return r == RoleSuperadmin
}
