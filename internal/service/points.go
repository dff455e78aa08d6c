package service

import (
	"context"
	"errors"

	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// pointsStore is satisfied by *data.PointsRepo.
type pointsStore interface {
	Award(ctx context.Context, req *model.AwardPointsRequest) (*model.PointsEntry, error)
	Balance(ctx context.Context, studentID string) (*model.PointsBalance, error)
	History(ctx context.Context, studentID string, limit, offset int) ([]*model.PointsEntry, error)
	Leaderboard(ctx context.Context, limit int) ([]*model.PointsBalance, error)
}

// PointsServiceOptions groups dependencies for PointsService.
type PointsServiceOptions struct {
	Points pointsStore
}

// PointsService exposes the engagement points ledger.
type PointsService struct {
	points pointsStore
}

// NewPointsService constructs a new PointsService.
func NewPointsService(opts PointsServiceOptions) (*PointsService, error) {
	if opts.Points == nil {
		return nil, errors.New("points store is required")
	}
	return &PointsService{points: opts.Points}, nil
}

// Award appends a ledger entry. Admin surface; engagement events credit
// points through their own services.
func (s *PointsService) Award(ctx context.Context, req *model.AwardPointsRequest) (*model.PointsEntry, error) {
	return s.points.Award(ctx, req)
}

// Balance returns a student's current total.
func (s *PointsService) Balance(ctx context.Context, studentID string) (*model.PointsBalance, error) {
	return s.points.Balance(ctx, studentID)
}

// History returns a student's ledger entries, newest first.
func (s *PointsService) History(ctx context.Context, studentID string, limit, offset int) ([]*model.PointsEntry, error) {
	return s.points.History(ctx, studentID, limit, offset)
}

// Leaderboard returns the top student totals. Admin surface.
func (s *PointsService) Leaderboard(ctx context.Context, limit int) ([]*model.PointsBalance, error) {
	return s.points.Leaderboard(ctx, limit)
}
