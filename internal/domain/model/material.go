package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxMaterialTitleLen = 255

// MaterialType classifies an uploaded course material.
type MaterialType string

const (
	MaterialTypePDF      MaterialType = "pdf"
	MaterialTypeEbook    MaterialType = "ebook"
	MaterialTypeDocument MaterialType = "document"
	MaterialTypeVideo    MaterialType = "video"
	MaterialTypeOther    MaterialType = "other"
)

// Valid reports whether the material type is supported.
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialTypePDF, MaterialTypeEbook, MaterialTypeDocument, MaterialTypeVideo, MaterialTypeOther:
		return true
	default:
		return false
	}
}

// normalizeMaterialType trims and lowercases the input, defaulting to other when empty.
func normalizeMaterialType(v MaterialType) MaterialType {
	normalized := MaterialType(strings.ToLower(strings.TrimSpace(string(v))))
	if normalized == "" {
		return MaterialTypeOther
	}
	return normalized
}

// ParseMaterialType normalizes a material type string and reports whether it is supported.
func ParseMaterialType(value string) (MaterialType, bool) {
	t := MaterialType(strings.ToLower(strings.TrimSpace(value)))
	if t.Valid() {
		return t, true
	}
	return "", false
}

// Material represents an uploaded file attached to a course.
// FilePath is the object key in blob storage, not a local path.
type Material struct {
	ID          string       `json:"id"                    db:"id"`
	CourseID    string       `json:"course_id"             db:"course_id"`
	Title       string       `json:"title"                 db:"title"`
	Description *string      `json:"description,omitempty" db:"description"`
	Type        MaterialType `json:"type"                  db:"type"`
	FilePath    *string      `json:"file_path,omitempty"   db:"file_path"`
	FileSize    *int64       `json:"file_size,omitempty"   db:"file_size"`
	CreatedAt   time.Time    `json:"created_at"            db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"            db:"updated_at"`
}

// MaterialsListOptions controls paging and filtering for listing materials.
type MaterialsListOptions struct {
	Limit    int
	Offset   int
	CourseID *string       // exact match
	Type     *MaterialType // exact match
}

// CreateMaterialRequest represents parameters to create a Material.
type CreateMaterialRequest struct {
	CourseID    string       `json:"course_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Type        MaterialType `json:"type"`
	FilePath    string       `json:"file_path"`
	FileSize    *int64       `json:"file_size,omitempty"`
}

// UpdateMaterialRequest represents parameters to update a Material.
type UpdateMaterialRequest struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Type        *MaterialType `json:"type,omitempty"`
	FilePath    *string       `json:"file_path,omitempty"`
	FileSize    *int64        `json:"file_size,omitempty"`
}

// Validate validates CreateMaterialRequest.
func (r *CreateMaterialRequest) Validate() error {
	if strings.TrimSpace(r.CourseID) == "" {
		return errors.New("course_id is required")
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxMaterialTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if strings.TrimSpace(r.FilePath) == "" {
		return errors.New("file_path is required")
	}
	if r.FileSize != nil && *r.FileSize < 0 {
		return errors.New("file_size cannot be negative")
	}
	r.Type = normalizeMaterialType(r.Type)
	if !r.Type.Valid() {
		return errors.New("invalid material type")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateMaterialRequest.
func (r *UpdateMaterialRequest) HasUpdates() bool {
	return r.Title != nil || r.Description != nil || r.Type != nil || r.FilePath != nil || r.FileSize != nil
}

// Validate validates UpdateMaterialRequest, ensuring at least one field is set and values are sane.
func (r *UpdateMaterialRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		if t == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(t) > maxMaterialTitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
	}
	if r.FilePath != nil && strings.TrimSpace(*r.FilePath) == "" {
		return errors.New("file_path cannot be empty")
	}
	if r.FileSize != nil && *r.FileSize < 0 {
		return errors.New("file_size cannot be negative")
	}
	if r.Type != nil {
		t := normalizeMaterialType(*r.Type)
		if !t.Valid() {
			return errors.New("invalid material type")
		}
		*r.Type = t
	}
	return nil
}
