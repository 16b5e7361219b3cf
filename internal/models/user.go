// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system. A user holds
// exactly one role, assigned by an admin at approval time.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

// ValidRequestedRole reports whether a role may be requested at
// registration. Admin can never be requested — it is only assigned.
func ValidRequestedRole(r Role) bool {
	return r == RoleEditor || r == RoleUser
}

// User represents a platform account. Accounts start unapproved; an admin
// approves the registration and assigns the final role, or rejects it.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"` // Never serialize the hash
	DisplayName   string     `json:"display_name"`
	IsApproved    bool       `json:"is_approved"`
	RequestedRole Role       `json:"requested_role"`
	Role          Role       `json:"role"`
	RejectedAt    *time.Time `json:"rejected_at,omitempty"`
	TOTPSecret    *string    `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled   bool       `json:"totp_enabled"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsEditor returns true if the user may moderate posts.
func (u *User) IsEditor() bool {
	return u.Role == RoleEditor
}

// CanLogin reports whether the account is allowed to authenticate.
// Unapproved and rejected registrations are locked out regardless of
// whether the password matches.
func (u *User) CanLogin() bool {
	return u.IsApproved && u.RejectedAt == nil
}
