package domain

import "strings"

// Role is an authority granted to a user.
type Role string

const (
	RoleUser      Role = "ROLE_USER"
	RoleModerator Role = "ROLE_MODERATOR"
	RoleAdmin     Role = "ROLE_ADMIN"
)

// ParseRole accepts either the full authority name or its short form
// ("admin", "mod", "user").
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user", "role_user":
		return RoleUser, true
	case "mod", "moderator", "role_moderator":
		return RoleModerator, true
	case "admin", "role_admin":
		return RoleAdmin, true
	default:
		return "", false
	}
}
