package service

import (
	"context"
	"errors"
	"fmt"

	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// profileStore is the profile persistence surface the service needs.
// Satisfied by *data.ProfileRepo.
type profileStore interface {
	GetByID(ctx context.Context, id string) (*domainauth.Profile, error)
	Update(ctx context.Context, id string, req model.UpdateProfileRequest) (*domainauth.Profile, error)
	Upsert(ctx context.Context, id string, fullName *string, role domainauth.Role) (*domainauth.Profile, error)
	ListStudents(ctx context.Context, limit, offset int) ([]*domainauth.Profile, error)
}

// userRoleStore lets the service keep the account role in step with the
// profile role. Satisfied by *data.UserRepo.
type userRoleStore interface {
	UpdateRole(ctx context.Context, id string, role domainauth.Role) error
}

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Profiles profileStore
	Users    userRoleStore // optional; role changes skip the account table when nil
}

// ProfileService exposes profile reads and updates.
type ProfileService struct {
	profiles profileStore
	users    userRoleStore
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(opts ProfileServiceOptions) (*ProfileService, error) {
	if opts.Profiles == nil {
		return nil, errors.New("profile store is required")
	}
	return &ProfileService{profiles: opts.Profiles, users: opts.Users}, nil
}

// Get returns a profile by user id.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domainauth.Profile, error) {
	return s.profiles.GetByID(ctx, userID)
}

// Update applies partial updates to the caller's own profile. Role is not
// part of UpdateProfileRequest; role changes go through SetRole.
func (s *ProfileService) Update(ctx context.Context, userID string, req model.UpdateProfileRequest) (*domainauth.Profile, error) {
	return s.profiles.Update(ctx, userID, req)
}

// SetRole changes a user's role on both the profile and the account record.
// Admin-only operation, enforced at the HTTP layer. The upsert keeps the
// existing full name.
func (s *ProfileService) SetRole(ctx context.Context, userID string, role domainauth.Role) (*domainauth.Profile, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	profile, err := s.profiles.Upsert(ctx, userID, nil, role)
	if err != nil {
		return nil, fmt.Errorf("update profile role: %w", err)
	}
	if s.users != nil {
		if err := s.users.UpdateRole(ctx, userID, role); err != nil {
			return nil, fmt.Errorf("update account role: %w", err)
		}
	}
	return profile, nil
}

// ListStudents returns student profiles with pagination.
func (s *ProfileService) ListStudents(ctx context.Context, limit, offset int) ([]*domainauth.Profile, error) {
	return s.profiles.ListStudents(ctx, limit, offset)
}
