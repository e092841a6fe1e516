package model

// Role represents a contributor's repository permission level as reported
// by the collaborator permission endpoint.
type Role string

const (
	RoleNone     Role = "none"
	RoleTriage   Role = "triage"
	RoleWrite    Role = "write"
	RoleMaintain Role = "maintain"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a permission string from the API to a Role.
// Unknown values map to RoleNone.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleTriage, RoleWrite, RoleMaintain, RoleAdmin:
		return Role(s)
	default:
		return RoleNone
	}
}
