package service

import (
	"context"
	"errors"

	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// announcementStore is satisfied by *data.AnnouncementRepo.
type announcementStore interface {
	Create(ctx context.Context, createdBy string, req *model.CreateAnnouncementRequest) (*model.Announcement, error)
	GetByID(ctx context.Context, id string) (*model.Announcement, error)
	List(ctx context.Context, opts model.AnnouncementsListOptions) ([]*model.Announcement, error)
	Update(ctx context.Context, id string, req model.UpdateAnnouncementRequest) (*model.Announcement, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AnnouncementServiceOptions groups dependencies for AnnouncementService.
type AnnouncementServiceOptions struct {
	Announcements announcementStore
}

// AnnouncementService exposes global and per-course announcements.
type AnnouncementService struct {
	announcements announcementStore
}

// NewAnnouncementService constructs a new AnnouncementService.
func NewAnnouncementService(opts AnnouncementServiceOptions) (*AnnouncementService, error) {
	if opts.Announcements == nil {
		return nil, errors.New("announcement store is required")
	}
	return &AnnouncementService{announcements: opts.Announcements}, nil
}

// Create publishes an announcement, either global or scoped to one course.
func (s *AnnouncementService) Create(ctx context.Context, createdBy string, req *model.CreateAnnouncementRequest) (*model.Announcement, error) {
	return s.announcements.Create(ctx, createdBy, req)
}

// GetByID returns an announcement by id.
func (s *AnnouncementService) GetByID(ctx context.Context, id string) (*model.Announcement, error) {
	return s.announcements.GetByID(ctx, id)
}

// ListForCourse returns the announcements a course's students should see:
// the course-scoped ones plus the global ones, newest first.
func (s *AnnouncementService) ListForCourse(ctx context.Context, courseID string, limit, offset int) ([]*model.Announcement, error) {
	return s.announcements.List(ctx, model.AnnouncementsListOptions{
		CourseID: &courseID,
		Limit:    limit,
		Offset:   offset,
	})
}

// ListGlobal returns global announcements, newest first.
func (s *AnnouncementService) ListGlobal(ctx context.Context, limit, offset int) ([]*model.Announcement, error) {
	return s.announcements.List(ctx, model.AnnouncementsListOptions{
		GlobalOnly: true,
		Limit:      limit,
		Offset:     offset,
	})
}

// Update applies partial updates to an announcement.
func (s *AnnouncementService) Update(ctx context.Context, id string, req model.UpdateAnnouncementRequest) (*model.Announcement, error) {
	return s.announcements.Update(ctx, id, req)
}

// Delete removes an announcement. Reports whether a row was deleted.
func (s *AnnouncementService) Delete(ctx context.Context, id string) (bool, error) {
	return s.announcements.Delete(ctx, id)
}
