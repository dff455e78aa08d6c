package auth

// Package auth contains domain-level types for authentication, sessions,
// and role gating. It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// StudyZone has exactly two roles; anything else is rejected at parse time.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// ParseRole converts a stored role string into a Role. Unknown values are a
// hard error so that a corrupted or unexpected role row fails at the
// deserialization boundary instead of silently gating as non-admin.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStudent:
		return RoleStudent, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// Valid reports whether the role is one of the two supported variants.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleStudent }

// Identity represents the authenticated principal returned by an identity
// provider. Adapters map provider-specific records into this shape.
type Identity struct {
	UserID    string // stable user identifier
	Email     string
	FullName  string
	Role      Role     // set by credential-backed providers
	Groups    []string // set by federated providers; mapped to a Role downstream
	ExpiresAt time.Time
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// User is the minimal identity record consumed by AuthState.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// Profile extends a User identity with role and academic metadata.
// Profile.ID always equals the owning User.ID.
type Profile struct {
	ID           string    `json:"id"            db:"id"`
	FullName     *string   `json:"full_name"     db:"full_name"`
	Role         Role      `json:"role"          db:"role"`
	Faculty      *string   `json:"faculty"       db:"faculty"`
	Department   *string   `json:"department"    db:"department"`
	MatricNumber *string   `json:"matric_number" db:"matric_number"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"    db:"updated_at"`
}

// AuthState is the aggregate a client observes: who is signed in, with what
// profile, and whether that answer is still being resolved.
//
// Invariants:
//   - Loading is true from construction until the first resolution of
//     either "no session" or "session plus settled profile fetch".
//   - User == nil implies Profile == nil.
//   - While Loading is true, IsAdmin is meaningless and must not be used
//     for gating decisions.
type AuthState struct {
	User    *User
	Profile *Profile
	Session *Session
	Loading bool
	IsAdmin bool
}

// SignedOut returns the canonical signed-out state.
func SignedOut() AuthState {
	return AuthState{Loading: false}
}
