package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxAnnouncementTitleLen = 255

// Announcement is a notice posted by an admin, either global or scoped to a course.
type Announcement struct {
	ID         string    `json:"id"                    db:"id"`
	CourseID   *string   `json:"course_id,omitempty"   db:"course_id"`
	CreatedBy  string    `json:"created_by"            db:"created_by"`
	AuthorName *string   `json:"author_name,omitempty" db:"author_name"`
	Title      string    `json:"title"                 db:"title"`
	Content    string    `json:"content"               db:"content"`
	IsGlobal   bool      `json:"is_global"             db:"is_global"`
	CreatedAt  time.Time `json:"created_at"            db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"            db:"updated_at"`
}

// AnnouncementsListOptions controls paging and filtering for listing announcements.
// When CourseID is set, global announcements are included alongside the course's own.
type AnnouncementsListOptions struct {
	Limit      int
	Offset     int
	CourseID   *string
	GlobalOnly bool
}

// CreateAnnouncementRequest represents parameters to create an Announcement.
// Exactly one of IsGlobal or CourseID must be set.
type CreateAnnouncementRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	CourseID *string `json:"course_id,omitempty"`
	IsGlobal bool    `json:"is_global"`
}

// UpdateAnnouncementRequest represents parameters to update an Announcement.
type UpdateAnnouncementRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Validate validates CreateAnnouncementRequest.
func (r *CreateAnnouncementRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxAnnouncementTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required")
	}
	hasCourse := r.CourseID != nil && strings.TrimSpace(*r.CourseID) != ""
	if r.IsGlobal && hasCourse {
		return errors.New("global announcements cannot target a course")
	}
	if !r.IsGlobal && !hasCourse {
		return errors.New("course_id is required for non-global announcements")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateAnnouncementRequest.
func (r *UpdateAnnouncementRequest) HasUpdates() bool {
	return r.Title != nil || r.Content != nil
}

// Validate validates UpdateAnnouncementRequest.
func (r *UpdateAnnouncementRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		if t == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(t) > maxAnnouncementTitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
	}
	if r.Content != nil && strings.TrimSpace(*r.Content) == "" {
		return errors.New("content cannot be empty")
	}
	return nil
}
