package state

import "strings"

// Role is a user's permission level. Roles are asserted by the caller; there
// is no authentication.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleViewer    Role = "viewer"
)

// ParseRole maps a role name to a Role, defaulting to viewer.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleDeveloper:
		return RoleDeveloper
	default:
		return RoleViewer
	}
}

// User identifies who performs a mutation.
type User struct {
	Name string `json:"username"`
	Role Role   `json:"role"`
}

// System is the identity used by background jobs.
var System = User{Name: "system", Role: RoleAdmin}

// CanGovern reports whether the user may approve, reject or unregister.
func (u User) CanGovern() bool {
	return u.Role == RoleAdmin
}

// CanBuild reports whether the user may use the workflow builder.
func (u User) CanBuild() bool {
	return u.Role == RoleAdmin || u.Role == RoleDeveloper
}
