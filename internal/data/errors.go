package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// User account repository sentinels.
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")

	// Profile repository sentinels.
	ErrProfileNotFound = errors.New("profile not found")

	// Course repository sentinels.
	ErrCourseNotFound   = errors.New("course not found")
	ErrCourseSlugExists = errors.New("course slug already exists")

	// Enrollment repository sentinels.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("student already enrolled in course")

	// Material repository sentinels.
	ErrMaterialNotFound = errors.New("material not found")

	// Announcement repository sentinels.
	ErrAnnouncementNotFound = errors.New("announcement not found")

	// Blog repository sentinels.
	ErrBlogPostNotFound   = errors.New("blog post not found")
	ErrBlogPostSlugExists = errors.New("blog post slug already exists")

	// Payment repository sentinels.
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrPaymentReferenceExists = errors.New("payment reference already recorded")
)
