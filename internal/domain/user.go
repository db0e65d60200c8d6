// Package domain holds the core entities and rules of the clinic:
// users and roles, pets, the appointment state machine, medical records,
// and audit entries.
package domain

import (
	"fmt"
	"time"
)

// Role is the portal role carried by every account.
type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// ParseRole validates a role string coming from storage or a request.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleStaff, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is a portal account. Credential material lives here because the
// backend is its own identity provider; everything else treats users
// through Actor.
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Role             Role      `json:"role"`
	PasswordHash     string    `json:"-"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	TwoFactorSecret  string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// Actor is the authenticated identity performing an operation.
// Every lifecycle and filter operation takes an explicit Actor; nothing
// below the HTTP layer reads ambient session state.
type Actor struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// Actor derives the acting identity from a stored user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
