package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxBlogTitleLen = 255

// BlogPost is a public article written by an admin.
// Drafts (Published == false) are visible only to admins.
type BlogPost struct {
	ID          string     `json:"id"                     db:"id"`
	Title       string     `json:"title"                  db:"title"`
	Slug        string     `json:"slug"                   db:"slug"`
	Category    string     `json:"category"               db:"category"`
	Excerpt     *string    `json:"excerpt,omitempty"      db:"excerpt"`
	Content     string     `json:"content"                db:"content"`
	AuthorID    string     `json:"author_id"              db:"author_id"`
	AuthorName  *string    `json:"author_name,omitempty"  db:"author_name"`
	Published   bool       `json:"published"              db:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at"             db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"             db:"updated_at"`
}

// BlogListOptions controls paging and filtering for listing blog posts.
type BlogListOptions struct {
	Limit         int
	Offset        int
	Category      *string // exact match
	PublishedOnly bool
}

// CreateBlogPostRequest represents parameters to create a BlogPost.
type CreateBlogPostRequest struct {
	Title    string  `json:"title"`
	Slug     string  `json:"slug"`
	Category string  `json:"category"`
	Excerpt  *string `json:"excerpt,omitempty"`
	Content  string  `json:"content"`
	Publish  bool    `json:"publish"`
}

// UpdateBlogPostRequest represents parameters to update a BlogPost.
type UpdateBlogPostRequest struct {
	Title    *string `json:"title,omitempty"`
	Slug     *string `json:"slug,omitempty"`
	Category *string `json:"category,omitempty"`
	Excerpt  *string `json:"excerpt,omitempty"`
	Content  *string `json:"content,omitempty"`
	Publish  *bool   `json:"publish,omitempty"`
}

// Validate validates CreateBlogPostRequest.
func (r *CreateBlogPostRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxBlogTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if err := validateSlug(r.Slug); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return errors.New("category is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateBlogPostRequest.
func (r *UpdateBlogPostRequest) HasUpdates() bool {
	return r.Title != nil || r.Slug != nil || r.Category != nil || r.Excerpt != nil ||
		r.Content != nil ||
		r.Publish != nil
}

// Validate validates UpdateBlogPostRequest.
func (r *UpdateBlogPostRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		if t == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(t) > maxBlogTitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
	}
	if r.Slug != nil {
		if err := validateSlug(*r.Slug); err != nil {
			return err
		}
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		return errors.New("category cannot be empty")
	}
	if r.Content != nil && strings.TrimSpace(*r.Content) == "" {
		return errors.New("content cannot be empty")
	}
	return nil
}
