package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyzone/studyzone-api/internal/data"
	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/ports"
	"github.com/studyzone/studyzone-api/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAuthService scripts responses for the auth handlers.
type fakeAuthService struct {
	signInResult *service.SignInResult
	signInErr    error
	signUpResult *service.SignInResult
	signUpErr    error
	signOutErr   error
	sessions     map[string]*domainauth.Session

	signedOut []string
}

func (f *fakeAuthService) GetSession(_ context.Context, id string) (*domainauth.Session, error) {
	if sess, ok := f.sessions[id]; ok {
		return sess, nil
	}
	return nil, service.ErrSessionExpired
}

func (f *fakeAuthService) SignIn(_ context.Context, _, _ string) (*service.SignInResult, error) {
	return f.signInResult, f.signInErr
}

func (f *fakeAuthService) SignUp(_ context.Context, _ ports.SignUpInput) (*service.SignInResult, error) {
	return f.signUpResult, f.signUpErr
}

func (f *fakeAuthService) SignOut(_ context.Context, id string) error {
	f.signedOut = append(f.signedOut, id)
	return f.signOutErr
}

func (f *fakeAuthService) BeginSSOLogin(context.Context, string) (*service.BeginSSOLoginResult, error) {
	return &service.BeginSSOLoginResult{
		AuthURL: "https://idp.university.edu/authorize?client_id=x",
		State:   "state-1",
		Nonce:   "nonce-1",
	}, nil
}

func (f *fakeAuthService) CompleteSSOLogin(_ context.Context, in service.CompleteSSOLoginInput) (*service.SignInResult, error) {
	if in.State != "state-1" || in.Nonce != "nonce-1" {
		return nil, errors.New("state mismatch")
	}
	return f.signInResult, f.signInErr
}

func signInResultFor(role domainauth.Role) *service.SignInResult {
	return &service.SignInResult{
		Session: domainauth.Session{
			ID:        "sess-1",
			UserID:    "user-1",
			Email:     "student@studyzone.com",
			FullName:  "Test Student",
			Role:      role,
			ExpiresAt: time.Now().Add(8 * time.Hour),
		},
	}
}

func newAuthHandlers(svc AuthServiceInterface) *AuthHandlers {
	return &AuthHandlers{Svc: svc, Logger: discardLogger()}
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandlers_SignIn(t *testing.T) {
	t.Run("success sets session cookie", func(t *testing.T) {
		svc := &fakeAuthService{signInResult: signInResultFor(domainauth.RoleStudent)}
		h := newAuthHandlers(svc)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"student@studyzone.com","password":"pw"}`))
		h.SignIn(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		cookie := sessionCookieFrom(t, rec)
		require.NotNil(t, cookie, "session cookie should be set")
		assert.Equal(t, "sess-1", cookie.Value)
		assert.True(t, cookie.HttpOnly)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "user-1", user["id"])
		assert.Equal(t, "student", user["role"])
	})

	t.Run("failure is an opaque 401", func(t *testing.T) {
		svc := &fakeAuthService{signInErr: errors.New("bcrypt mismatch for user-1")}
		h := newAuthHandlers(svc)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"student@studyzone.com","password":"wrong"}`))
		h.SignIn(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_credentials")
		assert.NotContains(t, rec.Body.String(), "bcrypt")
	})

	t.Run("malformed body", func(t *testing.T) {
		h := newAuthHandlers(&fakeAuthService{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`))
		h.SignIn(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_json")
	})
}

func TestAuthHandlers_SignUp(t *testing.T) {
	t.Run("created with cookie", func(t *testing.T) {
		svc := &fakeAuthService{signUpResult: signInResultFor(domainauth.RoleStudent)}
		h := newAuthHandlers(svc)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/signup",
			strings.NewReader(`{"email":"new@studyzone.com","password":"pw","full_name":"New Student"}`))
		h.SignUp(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, sessionCookieFrom(t, rec))
	})

	t.Run("missing fields rejected before the service", func(t *testing.T) {
		h := newAuthHandlers(&fakeAuthService{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/signup",
			strings.NewReader(`{"email":"","password":""}`))
		h.SignUp(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "validation_failed")
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		svc := &fakeAuthService{signUpErr: data.ErrEmailExists}
		h := newAuthHandlers(svc)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/signup",
			strings.NewReader(`{"email":"taken@studyzone.com","password":"pw"}`))
		h.SignUp(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestAuthHandlers_SignOut(t *testing.T) {
	t.Run("with session", func(t *testing.T) {
		svc := &fakeAuthService{}
		h := newAuthHandlers(svc)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
		h.SignOut(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"sess-1"}, svc.signedOut)

		cookie := sessionCookieFrom(t, rec)
		require.NotNil(t, cookie)
		assert.Equal(t, -1, cookie.MaxAge, "cookie should be cleared")
	})

	t.Run("idempotent without session", func(t *testing.T) {
		h := newAuthHandlers(&fakeAuthService{})

		rec := httptest.NewRecorder()
		h.SignOut(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "signed_out")
	})

	t.Run("store failure still succeeds", func(t *testing.T) {
		svc := &fakeAuthService{signOutErr: errors.New("redis down")}
		h := newAuthHandlers(svc)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
		h.SignOut(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthHandlers_Status(t *testing.T) {
	sess := signInResultFor(domainauth.RoleAdmin).Session
	svc := &fakeAuthService{sessions: map[string]*domainauth.Session{"sess-1": &sess}}
	h := newAuthHandlers(svc)

	t.Run("authenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
		h.Status(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["authenticated"])
	})

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Status(rec, httptest.NewRequest(http.MethodGet, "/auth/status", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["authenticated"])
	})

	t.Run("stale cookie is cleared", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "expired"})
		h.Status(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		cookie := sessionCookieFrom(t, rec)
		require.NotNil(t, cookie)
		assert.Equal(t, -1, cookie.MaxAge)
	})
}

func TestAuthHandlers_SSOCallback(t *testing.T) {
	admin := signInResultFor(domainauth.RoleAdmin)

	newCallbackRequest := func(query string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/auth/sso/callback"+query, nil)
		req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-1"})
		req.AddCookie(&http.Cookie{Name: "oauth_nonce", Value: "nonce-1"})
		return req
	}

	t.Run("admin lands on admin home", func(t *testing.T) {
		h := newAuthHandlers(&fakeAuthService{signInResult: admin})

		rec := httptest.NewRecorder()
		h.SSOCallback(rec, newCallbackRequest("?code=abc&state=state-1"))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, domainauth.PathAdminHome, rec.Header().Get("Location"))
		require.NotNil(t, sessionCookieFrom(t, rec))
	})

	t.Run("post-login redirect wins", func(t *testing.T) {
		h := newAuthHandlers(&fakeAuthService{signInResult: admin})

		req := newCallbackRequest("?code=abc&state=state-1")
		req.AddCookie(&http.Cookie{Name: "post_login_redirect", Value: "/admin/blog"})

		rec := httptest.NewRecorder()
		h.SSOCallback(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin/blog", rec.Header().Get("Location"))
	})

	t.Run("state mismatch", func(t *testing.T) {
		h := newAuthHandlers(&fakeAuthService{signInResult: admin})

		req := httptest.NewRequest(http.MethodGet, "/auth/sso/callback?code=abc&state=other", nil)
		req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-1"})

		rec := httptest.NewRecorder()
		h.SSOCallback(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_state")
	})

	t.Run("missing code", func(t *testing.T) {
		h := newAuthHandlers(&fakeAuthService{})

		rec := httptest.NewRecorder()
		h.SSOCallback(rec, httptest.NewRequest(http.MethodGet, "/auth/sso/callback?state=state-1", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing_code")
	})
}

func TestAuthHandlers_SSOLogin(t *testing.T) {
	h := newAuthHandlers(&fakeAuthService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/sso/login?redirect_uri=/student", nil)
	h.SSOLogin(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "idp.university.edu")

	names := map[string]string{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = c.Value
	}
	assert.Equal(t, "state-1", names["oauth_state"])
	assert.Equal(t, "nonce-1", names["oauth_nonce"])
	assert.Equal(t, "/student", names["post_login_redirect"])
}
