package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyzone/studyzone-api/internal/data"
	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// memProfileRoleStore is an in-memory profile double.
type memProfileRoleStore struct {
	profiles  map[string]*domainauth.Profile
	upsertErr error
}

func newMemProfileRoleStore() *memProfileRoleStore {
	return &memProfileRoleStore{profiles: make(map[string]*domainauth.Profile)}
}

func (m *memProfileRoleStore) GetByID(_ context.Context, id string) (*domainauth.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, data.ErrProfileNotFound
	}
	return p, nil
}

func (m *memProfileRoleStore) Update(_ context.Context, id string, req model.UpdateProfileRequest) (*domainauth.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, data.ErrProfileNotFound
	}
	if req.FullName != nil {
		p.FullName = req.FullName
	}
	if req.Faculty != nil {
		p.Faculty = req.Faculty
	}
	return p, nil
}

func (m *memProfileRoleStore) Upsert(_ context.Context, id string, fullName *string, role domainauth.Role) (*domainauth.Profile, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	p, ok := m.profiles[id]
	if !ok {
		p = &domainauth.Profile{ID: id}
		m.profiles[id] = p
	}
	if fullName != nil {
		p.FullName = fullName
	}
	p.Role = role
	return p, nil
}

func (m *memProfileRoleStore) ListStudents(_ context.Context, limit, offset int) ([]*domainauth.Profile, error) {
	var out []*domainauth.Profile
	for _, p := range m.profiles {
		if p.Role == domainauth.RoleStudent {
			out = append(out, p)
		}
	}
	return out, nil
}

// recordingRoleStore captures role sync calls to the account table.
type recordingRoleStore struct {
	calls map[string]domainauth.Role
	err   error
}

func (r *recordingRoleStore) UpdateRole(_ context.Context, id string, role domainauth.Role) error {
	if r.err != nil {
		return r.err
	}
	if r.calls == nil {
		r.calls = make(map[string]domainauth.Role)
	}
	r.calls[id] = role
	return nil
}

func TestNewProfileService_RequiresStore(t *testing.T) {
	_, err := NewProfileService(ProfileServiceOptions{})
	require.Error(t, err)
}

func TestProfileService_SetRole(t *testing.T) {
	t.Run("syncs profile and account", func(t *testing.T) {
		store := newMemProfileRoleStore()
		name := "Ada"
		store.profiles["user-1"] = &domainauth.Profile{ID: "user-1", FullName: &name, Role: domainauth.RoleStudent}
		users := &recordingRoleStore{}

		svc, err := NewProfileService(ProfileServiceOptions{Profiles: store, Users: users})
		require.NoError(t, err)

		profile, err := svc.SetRole(context.Background(), "user-1", domainauth.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleAdmin, profile.Role)
		assert.Equal(t, domainauth.RoleAdmin, users.calls["user-1"])
		require.NotNil(t, profile.FullName)
		assert.Equal(t, "Ada", *profile.FullName, "existing name survives the role upsert")
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		svc, err := NewProfileService(ProfileServiceOptions{Profiles: newMemProfileRoleStore()})
		require.NoError(t, err)

		_, err = svc.SetRole(context.Background(), "user-1", domainauth.Role("superuser"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "superuser")
	})

	t.Run("nil user store skips account sync", func(t *testing.T) {
		store := newMemProfileRoleStore()
		svc, err := NewProfileService(ProfileServiceOptions{Profiles: store})
		require.NoError(t, err)

		profile, err := svc.SetRole(context.Background(), "user-2", domainauth.RoleStudent)
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleStudent, profile.Role)
	})

	t.Run("account sync failure surfaces", func(t *testing.T) {
		store := newMemProfileRoleStore()
		users := &recordingRoleStore{err: errors.New("account row gone")}
		svc, err := NewProfileService(ProfileServiceOptions{Profiles: store, Users: users})
		require.NoError(t, err)

		_, err = svc.SetRole(context.Background(), "user-1", domainauth.RoleAdmin)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "update account role")
	})
}

func TestProfileService_Update(t *testing.T) {
	store := newMemProfileRoleStore()
	name := "Ada"
	store.profiles["user-1"] = &domainauth.Profile{ID: "user-1", FullName: &name, Role: domainauth.RoleStudent}

	svc, err := NewProfileService(ProfileServiceOptions{Profiles: store})
	require.NoError(t, err)

	faculty := "Engineering"
	profile, err := svc.Update(context.Background(), "user-1", model.UpdateProfileRequest{Faculty: &faculty})
	require.NoError(t, err)
	require.NotNil(t, profile.Faculty)
	assert.Equal(t, "Engineering", *profile.Faculty)

	_, err = svc.Update(context.Background(), "missing", model.UpdateProfileRequest{Faculty: &faculty})
	assert.ErrorIs(t, err, data.ErrProfileNotFound)
}
