package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/ports"
)

func TestMockIdentityProvider_SignIn_Defaults(t *testing.T) {
	provider := NewMockIdentityProvider()
	ctx := context.Background()

	id, err := provider.SignIn(ctx, ports.Credentials{Email: "any@example.edu", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", id.UserID)
	assert.Equal(t, domainauth.RoleStudent, id.Role)
	assert.True(t, id.ExpiresAt.After(time.Now()))
}

func TestMockIdentityProvider_SignUp_EchoesInput(t *testing.T) {
	provider := NewMockIdentityProvider()
	ctx := context.Background()

	id, err := provider.SignUp(ctx, ports.SignUpInput{
		Email:    "new@example.edu",
		Password: "pw123456",
		FullName: "New Student",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.edu", id.Email)
	assert.Equal(t, "New Student", id.FullName)
}

func TestMockIdentityProvider_CustomFunc(t *testing.T) {
	wantErr := errors.New("bad credentials")
	provider := &MockIdentityProvider{
		SignInFunc: func(_ context.Context, _ ports.Credentials) (domainauth.Identity, error) {
			return domainauth.Identity{}, wantErr
		},
	}

	_, err := provider.SignIn(context.Background(), ports.Credentials{})
	assert.ErrorIs(t, err, wantErr)
}

func TestMockFederatedProvider_Begin_Defaults(t *testing.T) {
	provider := NewMockFederatedProvider()
	ctx := context.Background()

	input := ports.BeginInput{RedirectURL: "http://localhost:8080/auth/sso/callback"}
	authURL, state, nonce, err := provider.Begin(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "https://mock-sso/auth", authURL)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	// Second call should increment counters
	_, state2, nonce2, err2 := provider.Begin(ctx, input)
	require.NoError(t, err2)
	assert.Equal(t, "state-2", state2)
	assert.Equal(t, "nonce-2", nonce2)
}

func TestMockFederatedProvider_Exchange_Defaults(t *testing.T) {
	provider := NewMockFederatedProvider()

	id, err := provider.Exchange(context.Background(), ports.ExchangeInput{
		Code: "code", State: "state-1", Nonce: "nonce-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "mock-sso-user-1", id.UserID)
	assert.Equal(t, []string{"students"}, id.Groups)
	assert.True(t, id.ExpiresAt.After(time.Now()))
}

func TestMemorySessionStore_SaveGetDelete(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	sess := domainauth.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Email:     "student@example.edu",
		Role:      domainauth.RoleStudent,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySessionStore_Save_EmptyID(t *testing.T) {
	store := NewMemorySessionStore()
	err := store.Save(context.Background(), domainauth.Session{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session ID cannot be empty")
}

func TestMemorySessionStore_DeleteForUser(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, store.Save(ctx, domainauth.Session{ID: id, UserID: "user-1"}))
	}
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "c", UserID: "user-2"}))

	require.NoError(t, store.DeleteForUser(ctx, "user-1"))

	assert.Equal(t, 1, store.Len())
	_, err := store.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestStaticRoleMapper(t *testing.T) {
	mapper := StaticRoleMapper{AdminGroup: "lms-admins"}

	assert.Equal(t, domainauth.RoleAdmin, mapper.Map([]string{"students", "lms-admins"}))
	assert.Equal(t, domainauth.RoleStudent, mapper.Map([]string{"students"}))
	assert.Equal(t, domainauth.RoleStudent, mapper.Map(nil))
}
