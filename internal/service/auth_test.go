package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/mocks"
	authmocks "github.com/studyzone/studyzone-api/internal/mocks/auth"
	"github.com/studyzone/studyzone-api/internal/ports"
	"go.uber.org/mock/gomock"
)

func studentIdentity() domainauth.Identity {
	return domainauth.Identity{
		UserID:    "user-1",
		Email:     "ada@example.edu",
		FullName:  "Ada Lovelace",
		Role:      domainauth.RoleStudent,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func profileFor(id domainauth.Identity, role domainauth.Role) *domainauth.Profile {
	name := id.FullName
	return &domainauth.Profile{ID: id.UserID, FullName: &name, Role: role}
}

func newTestAuthService(t *testing.T, mutate func(*AuthServiceOptions)) (*AuthService, *authmocks.MemorySessionStore, *mocks.MockProfileStore) {
	t.Helper()

	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileStore(ctrl)
	sessions := authmocks.NewMemorySessionStore()

	opts := AuthServiceOptions{
		Provider: authmocks.NewMockIdentityProvider(),
		Sessions: sessions,
		Profiles: profiles,
		Bootstrap: BootstrapAdmin{
			Email:    "admin@studyzone.com",
			Password: "admin123",
			FullName: "StudyZone Admin",
		},
	}
	if mutate != nil {
		mutate(&opts)
	}

	svc, err := NewAuthService(opts)
	require.NoError(t, err)
	return svc, sessions, profiles
}

func TestNewAuthService_Validation(t *testing.T) {
	_, err := NewAuthService(AuthServiceOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity provider is required")
}

func TestAuthService_SignIn_Success(t *testing.T) {
	identity := studentIdentity()
	svc, sessions, profiles := newTestAuthService(t, func(opts *AuthServiceOptions) {
		opts.Provider = &authmocks.MockIdentityProvider{
			SignInFunc: func(_ context.Context, creds ports.Credentials) (domainauth.Identity, error) {
				assert.Equal(t, "ada@example.edu", creds.Email)
				return identity, nil
			},
		}
	})
	profiles.EXPECT().
		Upsert(gomock.Any(), "user-1", gomock.Any(), domainauth.RoleStudent).
		Return(profileFor(identity, domainauth.RoleStudent), nil)

	res, err := svc.SignIn(context.Background(), "ada@example.edu", "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", res.Session.UserID)
	assert.Equal(t, domainauth.RoleStudent, res.Session.Role)
	assert.NotEmpty(t, res.Session.ID)
	require.NotNil(t, res.Profile)
	assert.Equal(t, domainauth.RoleStudent, res.Profile.Role)

	// Session was persisted
	got, err := sessions.Get(context.Background(), res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Session, got)
}

func TestAuthService_SignIn_FailureMutatesNothing(t *testing.T) {
	svc, sessions, _ := newTestAuthService(t, func(opts *AuthServiceOptions) {
		opts.Provider = &authmocks.MockIdentityProvider{
			SignInFunc: func(_ context.Context, _ ports.Credentials) (domainauth.Identity, error) {
				return domainauth.Identity{}, errors.New("invalid email or password")
			},
		}
	})
	// No profile expectations: the store must not be touched.

	_, err := svc.SignIn(context.Background(), "ada@example.edu", "wrong")
	require.Error(t, err)
	assert.Equal(t, 0, sessions.Len())
}

func TestAuthService_SignIn_BootstrapPairHealsToAdmin(t *testing.T) {
	// The account was registered but its profile drifted to student.
	identity := domainauth.Identity{
		UserID:    "admin-1",
		Email:     "Admin@StudyZone.com",
		FullName:  "StudyZone Admin",
		Role:      domainauth.RoleStudent,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	svc, _, profiles := newTestAuthService(t, func(opts *AuthServiceOptions) {
		opts.Provider = &authmocks.MockIdentityProvider{
			SignInFunc: func(_ context.Context, _ ports.Credentials) (domainauth.Identity, error) {
				return identity, nil
			},
		}
	})
	profiles.EXPECT().
		Upsert(gomock.Any(), "admin-1", gomock.Any(), domainauth.RoleAdmin).
		Return(profileFor(identity, domainauth.RoleAdmin), nil)

	res, err := svc.SignIn(context.Background(), "admin@studyzone.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, res.Session.Role)
	require.NotNil(t, res.Profile)
	assert.True(t, res.Session.IsAdmin())
}

func TestAuthService_SignIn_ProfileFailureDegrades(t *testing.T) {
	identity := studentIdentity()
	svc, _, profiles := newTestAuthService(t, func(opts *AuthServiceOptions) {
		opts.Provider = &authmocks.MockIdentityProvider{
			SignInFunc: func(_ context.Context, _ ports.Credentials) (domainauth.Identity, error) {
				return identity, nil
			},
		}
	})
	profiles.EXPECT().
		Upsert(gomock.Any(), "user-1", gomock.Any(), domainauth.RoleStudent).
		Return(nil, errors.New("db down"))

	res, err := svc.SignIn(context.Background(), "ada@example.edu", "secret")
	require.NoError(t, err)
	assert.Nil(t, res.Profile)
	assert.NotEmpty(t, res.Session.ID)
}

func TestAuthService_SignUp_CreatesStudentProfileWithName(t *testing.T) {
	svc, _, profiles := newTestAuthService(t, nil)
	profiles.EXPECT().
		Upsert(gomock.Any(), "mock-user-1", gomock.Any(), domainauth.RoleStudent).
		DoAndReturn(func(_ context.Context, id string, fullName *string, role domainauth.Role) (*domainauth.Profile, error) {
			require.NotNil(t, fullName)
			assert.Equal(t, "New Student", *fullName)
			return &domainauth.Profile{ID: id, FullName: fullName, Role: role}, nil
		})

	res, err := svc.SignUp(context.Background(), ports.SignUpInput{
		Email:    "new@example.edu",
		Password: "pw123456",
		FullName: "New Student",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Profile)
	assert.Equal(t, domainauth.RoleStudent, res.Profile.Role)
	assert.Equal(t, "New Student", *res.Profile.FullName)
}

func TestAuthService_SignOut_Idempotent(t *testing.T) {
	svc, sessions, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "sess-1", UserID: "user-1"}))

	require.NoError(t, svc.SignOut(ctx, "sess-1"))
	require.NoError(t, svc.SignOut(ctx, "sess-1"))
	require.NoError(t, svc.SignOut(ctx, "never-existed"))
	require.NoError(t, svc.SignOut(ctx, ""))
	assert.Equal(t, 0, sessions.Len())
}

func TestAuthService_SignOutEverywhere(t *testing.T) {
	svc, sessions, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	expiry := time.Now().Add(time.Hour)
	for _, id := range []string{"a", "b"} {
		require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: id, UserID: "user-1", ExpiresAt: expiry}))
	}
	require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "c", UserID: "user-2", ExpiresAt: expiry}))

	require.NoError(t, svc.SignOutEverywhere(ctx, "a"))
	assert.Equal(t, 1, sessions.Len())

	// Unknown session is not an error.
	require.NoError(t, svc.SignOutEverywhere(ctx, "gone"))
}

func TestAuthService_GetSession_Expired(t *testing.T) {
	svc, sessions, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, domainauth.Session{
		ID: "sess-old", UserID: "user-1", ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := svc.GetSession(ctx, "sess-old")
	assert.ErrorIs(t, err, ErrSessionExpired)

	// Expired session was cleaned up
	assert.Equal(t, 0, sessions.Len())
}

func TestAuthService_GetSession_Valid(t *testing.T) {
	svc, sessions, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	sess := domainauth.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, sessions.Save(ctx, sess))

	got, err := svc.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess, *got)
}

func TestAuthService_SSO_NotConfigured(t *testing.T) {
	svc, _, _ := newTestAuthService(t, nil)

	_, err := svc.BeginSSOLogin(context.Background(), "http://localhost/callback")
	assert.ErrorIs(t, err, ErrSSOUnavailable)

	_, err = svc.CompleteSSOLogin(context.Background(), CompleteSSOLoginInput{Code: "c", State: "s", Nonce: "n"})
	assert.ErrorIs(t, err, ErrSSOUnavailable)
}

func TestAuthService_CompleteSSOLogin_MapsGroups(t *testing.T) {
	svc, _, profiles := newTestAuthService(t, func(opts *AuthServiceOptions) {
		federated := authmocks.NewMockFederatedProvider()
		federated.DefaultIdentity.Groups = []string{"lms-admins"}
		opts.Federated = federated
		opts.Roles = authmocks.StaticRoleMapper{AdminGroup: "lms-admins"}
	})
	profiles.EXPECT().
		Upsert(gomock.Any(), "mock-sso-user-1", gomock.Any(), domainauth.RoleAdmin).
		Return(&domainauth.Profile{ID: "mock-sso-user-1", Role: domainauth.RoleAdmin}, nil)

	res, err := svc.CompleteSSOLogin(context.Background(), CompleteSSOLoginInput{
		Code: "code", State: "state", Nonce: "nonce",
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, res.Session.Role)
}

func TestAuthService_EnsureBootstrapAdmin(t *testing.T) {
	provisioned := domainauth.Identity{
		UserID:   "admin-1",
		Email:    "admin@studyzone.com",
		FullName: "StudyZone Admin",
		Role:     domainauth.RoleAdmin,
	}
	svc, _, profiles := newTestAuthService(t, func(opts *AuthServiceOptions) {
		opts.Provisioner = provisionerFunc(func(_ context.Context, in ports.SignUpInput, role domainauth.Role) (domainauth.Identity, error) {
			assert.Equal(t, "admin@studyzone.com", in.Email)
			assert.Equal(t, domainauth.RoleAdmin, role)
			return provisioned, nil
		})
	})
	profiles.EXPECT().
		Upsert(gomock.Any(), "admin-1", gomock.Any(), domainauth.RoleAdmin).
		Return(&domainauth.Profile{ID: "admin-1", Role: domainauth.RoleAdmin}, nil)

	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background()))
}

func TestAuthService_EnsureBootstrapAdmin_NoProvisioner(t *testing.T) {
	svc, _, _ := newTestAuthService(t, nil)
	err := svc.EnsureBootstrapAdmin(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provisioner is not configured")
}

// provisionerFunc adapts a function to ports.AccountProvisioner.
type provisionerFunc func(ctx context.Context, in ports.SignUpInput, role domainauth.Role) (domainauth.Identity, error)

func (f provisionerFunc) EnsureAccount(ctx context.Context, in ports.SignUpInput, role domainauth.Role) (domainauth.Identity, error) {
	return f(ctx, in, role)
}
