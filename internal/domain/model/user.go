package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
)

const (
	minPasswordLen = 6
	maxNameLen     = 120
)

// UserAccount is a credential-backed account row.
// PasswordHash is a bcrypt hash and never leaves the data layer.
type UserAccount struct {
	ID           string          `json:"id"         db:"id"`
	Email        string          `json:"email"      db:"email"`
	FullName     string          `json:"full_name"  db:"full_name"`
	PasswordHash string          `json:"-"          db:"password_hash"`
	Role         domainauth.Role `json:"role"       db:"role"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateUserRequest represents parameters to create a UserAccount.
// Password is the plaintext; hashing happens in the identity adapter.
type CreateUserRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	FullName string          `json:"full_name"`
	Role     domainauth.Role `json:"role"`
}

// Validate validates CreateUserRequest.
func (r *CreateUserRequest) Validate() error {
	email := strings.ToLower(strings.TrimSpace(r.Email))
	if email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email is not valid")
	}
	r.Email = email
	if utf8.RuneCountInString(r.Password) < minPasswordLen {
		return errors.New("password must be at least 6 characters")
	}
	if utf8.RuneCountInString(r.FullName) > maxNameLen {
		return errors.New("full_name cannot exceed 120 characters")
	}
	if r.Role == "" {
		r.Role = domainauth.RoleStudent
	}
	if !r.Role.Valid() {
		return errors.New("invalid role")
	}
	return nil
}

// UpdateProfileRequest represents parameters to update a student profile.
type UpdateProfileRequest struct {
	FullName     *string `json:"full_name,omitempty"`
	Faculty      *string `json:"faculty,omitempty"`
	Department   *string `json:"department,omitempty"`
	MatricNumber *string `json:"matric_number,omitempty"`
}

// HasUpdates reports whether any field is set in UpdateProfileRequest.
func (r *UpdateProfileRequest) HasUpdates() bool {
	return r.FullName != nil || r.Faculty != nil || r.Department != nil || r.MatricNumber != nil
}

// Validate validates UpdateProfileRequest.
func (r *UpdateProfileRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.FullName != nil && utf8.RuneCountInString(*r.FullName) > maxNameLen {
		return errors.New("full_name cannot exceed 120 characters")
	}
	return nil
}
