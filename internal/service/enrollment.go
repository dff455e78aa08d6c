package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/studyzone/studyzone-api/internal/domain/model"
	apperrors "github.com/studyzone/studyzone-api/internal/errors"
)

// Point awards for engagement events. Deltas are credited to the ledger
// best-effort; the primary operation never fails on a points error.
const (
	pointsForEnrollment = 10
	pointsForDownload   = 2
	pointsForChat       = 1
)

// enrollmentStore is the enrollment persistence surface the service needs.
// Satisfied by *data.EnrollmentRepo.
type enrollmentStore interface {
	Create(ctx context.Context, req *model.CreateEnrollmentRequest) (*model.Enrollment, error)
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
	List(ctx context.Context, opts model.EnrollmentsListOptions) ([]*model.Enrollment, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// pointsAwarder credits engagement points. Satisfied by *data.PointsRepo.
type pointsAwarder interface {
	Award(ctx context.Context, req *model.AwardPointsRequest) (*model.PointsEntry, error)
}

// EnrollmentServiceOptions groups dependencies for EnrollmentService.
type EnrollmentServiceOptions struct {
	Enrollments enrollmentStore
	Points      pointsAwarder // optional; enrollment skips point awards when nil
	Logger      *slog.Logger
}

// EnrollmentService manages course enrollments and the engagement points
// they earn.
type EnrollmentService struct {
	enrollments enrollmentStore
	points      pointsAwarder
	log         *slog.Logger
}

// NewEnrollmentService constructs a new EnrollmentService.
func NewEnrollmentService(opts EnrollmentServiceOptions) (*EnrollmentService, error) {
	if opts.Enrollments == nil {
		return nil, errors.New("enrollment store is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &EnrollmentService{
		enrollments: opts.Enrollments,
		points:      opts.Points,
		log:         log.With("component", "enrollment_service"),
	}, nil
}

// Enroll enrolls a student in a course and credits enrollment points.
// The points credit is best-effort: a ledger failure is logged, not surfaced.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	enrollment, err := s.enrollments.Create(ctx, &model.CreateEnrollmentRequest{
		StudentID: studentID,
		CourseID:  courseID,
	})
	if err != nil {
		return nil, err
	}

	s.awardPoints(ctx, studentID, pointsForEnrollment, "course enrollment")
	return enrollment, nil
}

// IsEnrolled reports whether the student is enrolled in the course.
func (s *EnrollmentService) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	return s.enrollments.Exists(ctx, studentID, courseID)
}

// ListForStudent returns a student's enrollments, newest first.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID string, limit, offset int) ([]*model.Enrollment, error) {
	return s.enrollments.List(ctx, model.EnrollmentsListOptions{
		StudentID: &studentID,
		Limit:     limit,
		Offset:    offset,
	})
}

// ListForCourse returns a course's enrollments, newest first. Admin view.
func (s *EnrollmentService) ListForCourse(ctx context.Context, courseID string, limit, offset int) ([]*model.Enrollment, error) {
	return s.enrollments.List(ctx, model.EnrollmentsListOptions{
		CourseID: &courseID,
		Limit:    limit,
		Offset:   offset,
	})
}

// Unenroll removes an enrollment, but only when it belongs to studentID.
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, enrollmentID string) (bool, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return false, err
	}
	if enrollment.StudentID != studentID {
		return false, apperrors.Forbiddenf("enrollment %s does not belong to student %s", enrollmentID, studentID)
	}
	return s.enrollments.Delete(ctx, enrollmentID)
}

func (s *EnrollmentService) awardPoints(ctx context.Context, studentID string, delta int, reason string) {
	if s.points == nil {
		return
	}
	if _, err := s.points.Award(ctx, &model.AwardPointsRequest{
		StudentID: studentID,
		Delta:     delta,
		Reason:    reason,
	}); err != nil {
		s.log.ErrorContext(ctx, "points award failed",
			"student_id", studentID, "reason", reason, "error", err)
	}
}
