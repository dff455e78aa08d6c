package model

import (
	"errors"
	"strings"
	"time"
)

// Enrollment links a student to a course.
type Enrollment struct {
	ID          string    `json:"id"                     db:"id"`
	StudentID   string    `json:"student_id"             db:"student_id"`
	CourseID    string    `json:"course_id"              db:"course_id"`
	EnrolledAt  time.Time `json:"enrolled_at"            db:"enrolled_at"`
	CourseTitle *string   `json:"course_title,omitempty" db:"course_title"`
	StudentName *string   `json:"student_name,omitempty" db:"student_name"`
}

// CreateEnrollmentRequest represents parameters to enroll a student.
type CreateEnrollmentRequest struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
}

// Validate validates CreateEnrollmentRequest.
func (r *CreateEnrollmentRequest) Validate() error {
	if strings.TrimSpace(r.StudentID) == "" {
		return errors.New("student_id is required")
	}
	if strings.TrimSpace(r.CourseID) == "" {
		return errors.New("course_id is required")
	}
	return nil
}

// EnrollmentsListOptions controls paging and filtering for listing enrollments.
type EnrollmentsListOptions struct {
	Limit     int
	Offset    int
	StudentID *string // exact match
	CourseID  *string // exact match
}
