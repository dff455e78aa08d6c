package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// courseStore is the course persistence surface the service needs.
// Satisfied by *data.CourseRepo.
type courseStore interface {
	Create(ctx context.Context, instructorID string, req *model.CreateCourseRequest) (*model.Course, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetBySlug(ctx context.Context, slug string) (*model.Course, error)
	ListWithOptions(ctx context.Context, opts model.CoursesListOptions) ([]*model.Course, error)
	Update(ctx context.Context, id string, req model.UpdateCourseRequest) (*model.Course, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CourseServiceOptions groups dependencies for CourseService.
type CourseServiceOptions struct {
	Courses courseStore
}

// CourseService exposes the course catalogue.
type CourseService struct {
	courses courseStore
}

// NewCourseService constructs a new CourseService.
func NewCourseService(opts CourseServiceOptions) (*CourseService, error) {
	if opts.Courses == nil {
		return nil, errors.New("course store is required")
	}
	return &CourseService{courses: opts.Courses}, nil
}

// Create creates a course owned by the given instructor.
func (s *CourseService) Create(ctx context.Context, instructorID string, req *model.CreateCourseRequest) (*model.Course, error) {
	course, err := s.courses.Create(ctx, instructorID, req)
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

// GetByID returns a course by id.
func (s *CourseService) GetByID(ctx context.Context, id string) (*model.Course, error) {
	return s.courses.GetByID(ctx, id)
}

// GetBySlug returns a course by its URL slug.
func (s *CourseService) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	return s.courses.GetBySlug(ctx, slug)
}

// List returns courses with pagination and optional filters.
func (s *CourseService) List(ctx context.Context, opts model.CoursesListOptions) ([]*model.Course, error) {
	return s.courses.ListWithOptions(ctx, opts)
}

// Update applies partial updates to a course.
func (s *CourseService) Update(ctx context.Context, id string, req model.UpdateCourseRequest) (*model.Course, error) {
	course, err := s.courses.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return course, nil
}

// Delete removes a course. Reports whether a row was deleted.
func (s *CourseService) Delete(ctx context.Context, id string) (bool, error) {
	return s.courses.Delete(ctx, id)
}
