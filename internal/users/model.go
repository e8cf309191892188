package users

import "time"

// Roles assignable to an account. Role changes are admin-only.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents a registered account. Accounts are deactivated, never
// deleted, in the normal flow.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ValidRole reports whether role is one of the assignable roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
