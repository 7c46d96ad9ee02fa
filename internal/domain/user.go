package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies the privilege level of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an identity record. PasswordHash is never serialized.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name,omitempty"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	IsActive      bool      `json:"is_active"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserPatch carries a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Email         *string
	Username      *string
	FullName      *string
	PasswordHash  *string
	IsActive      *bool
	EmailVerified *bool
}
