package domain

import "time"

// Role is the closed set of caller roles.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// ParseRole validates a role literal.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleUser, RoleAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

// User is the account model for everyone who signs in; admins are ordinary
// users carrying the Admin role.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Principal is the authenticated caller for the current request, derived from
// token claims and never persisted.
type Principal struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the principal holds the Admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
