//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxCourseTitleLen = 255
	maxSlugLen        = 120
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Course represents a course offering that students enroll in.
type Course struct {
	ID             string    `json:"id"                        db:"id"`
	Title          string    `json:"title"                     db:"title"`
	Description    *string   `json:"description,omitempty"     db:"description"`
	Slug           string    `json:"slug"                      db:"slug"`
	InstructorID   string    `json:"instructor_id"             db:"instructor_id"`
	InstructorName *string   `json:"instructor_name,omitempty" db:"instructor_name"`
	CreatedAt      time.Time `json:"created_at"                db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"                db:"updated_at"`
}

// CoursesListOptions controls paging and filtering for listing courses.
// Notes:
// - Sort supports: "created_at", "title" (case-insensitive).
// - Dir supports: "asc", "desc" (case-insensitive); values are normalized internally.
// - Q matches title via ILIKE substring.
type CoursesListOptions struct {
	Limit        int
	Offset       int
	Q            *string // substring match on title (ILIKE)
	InstructorID *string // exact match
	Sort         string  // allowed: "created_at", "title"
	Dir          string  // allowed: "asc", "desc"
}

// CreateCourseRequest represents parameters to create a Course.
type CreateCourseRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Slug        string  `json:"slug"`
}

// UpdateCourseRequest represents parameters to update a Course.
type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Slug        *string `json:"slug,omitempty"`
}

// Validate validates CreateCourseRequest.
func (r *CreateCourseRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxCourseTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	return validateSlug(r.Slug)
}

// HasUpdates reports whether any field is set in UpdateCourseRequest.
func (r *UpdateCourseRequest) HasUpdates() bool {
	return r.Title != nil || r.Description != nil || r.Slug != nil
}

// Validate validates UpdateCourseRequest, ensuring at least one field is set and values are sane.
func (r *UpdateCourseRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		if t == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(t) > maxCourseTitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
	}
	if r.Slug != nil {
		if err := validateSlug(*r.Slug); err != nil {
			return err
		}
	}
	return nil
}

func validateSlug(slug string) error {
	s := strings.TrimSpace(slug)
	if s == "" {
		return errors.New("slug is required")
	}
	if len(s) > maxSlugLen {
		return errors.New("slug cannot exceed 120 characters")
	}
	if !slugPattern.MatchString(s) {
		return errors.New("slug must be lowercase letters, digits and hyphens")
	}
	return nil
}
