package domain

import "strings"

// Role is the profile role carried in access tokens.
type Role string

const (
	RoleOwner     Role = "owner"
	RolePassenger Role = "passenger"
	RoleAdmin     Role = "admin"
)

// ParseRole normalizes a role string; ok is false for unknown roles.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleOwner, RolePassenger, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// Actor carries authenticated user info when available.
type Actor struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Is reports whether the actor is the given email, case-insensitively.
func (a Actor) Is(email string) bool {
	return a.Email != "" && strings.EqualFold(a.Email, strings.TrimSpace(email))
}
