package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
)

// stubSessionService resolves a fixed set of session ids.
type stubSessionService struct {
	sessions map[string]*domainauth.Session
}

func (s *stubSessionService) GetSession(_ context.Context, id string) (*domainauth.Session, error) {
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return nil, errors.New("session not found")
}

func studentSession() *domainauth.Session {
	return &domainauth.Session{
		ID:        "sess-student",
		UserID:    "user-1",
		Email:     "student@studyzone.com",
		Role:      domainauth.RoleStudent,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func adminSession() *domainauth.Session {
	return &domainauth.Session{
		ID:        "sess-admin",
		UserID:    "user-2",
		Email:     "admin@studyzone.com",
		Role:      domainauth.RoleAdmin,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func newStubAuth() *stubSessionService {
	return &stubSessionService{sessions: map[string]*domainauth.Session{
		"sess-student": studentSession(),
		"sess-admin":   adminSession(),
	}}
}

func withSessionCookie(r *http.Request, sessionID string) *http.Request {
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionID})
	return r
}

func sessionEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		require.True(t, ok, "handler should see a session in context")
		w.Header().Set("X-User", session.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	auth := newStubAuth()

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)

		RequireAuth(auth)(sessionEcho(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "authentication_required")
	})

	t.Run("unknown session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/profile", nil), "bogus")

		RequireAuth(auth)(sessionEcho(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid session reaches handler", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/profile", nil), "sess-student")

		RequireAuth(auth)(sessionEcho(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Header().Get("X-User"))
	})
}

func TestRequireAdmin(t *testing.T) {
	auth := newStubAuth()

	t.Run("student is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/students", nil), "sess-student")

		RequireAdmin(auth)(sessionEcho(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "insufficient_permissions")
	})

	t.Run("admin passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/students", nil), "sess-admin")

		RequireAdmin(auth)(sessionEcho(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-2", rec.Header().Get("X-User"))
	})

	t.Run("anonymous gets 401 not 403", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)

		RequireAdmin(auth)(sessionEcho(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGateBrowser(t *testing.T) {
	auth := newStubAuth()

	t.Run("anonymous on student area redirects to login with redirect_uri", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/student", nil)

		GateBrowser(auth, StudentGate())(sessionEcho(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, domainauth.PathLogin+"?redirect_uri=%2Fstudent", rec.Header().Get("Location"))
	})

	t.Run("anonymous on admin area redirects to admin login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)

		GateBrowser(auth, AdminGate())(sessionEcho(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, domainauth.PathAdminLogin+"?redirect_uri=%2Fadmin", rec.Header().Get("Location"))
	})

	t.Run("student on admin area is sent home", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/admin", nil), "sess-student")

		GateBrowser(auth, AdminGate())(sessionEcho(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, domainauth.PathStudentHome, rec.Header().Get("Location"))
	})

	t.Run("student on student area passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/student", nil), "sess-student")

		GateBrowser(auth, StudentGate())(sessionEcho(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin on admin area passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/admin", nil), "sess-admin")

		GateBrowser(auth, AdminGate())(sessionEcho(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	auth := newStubAuth()

	var sawSession bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawSession = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	OptionalAuth(auth)(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sawSession)

	rec = httptest.NewRecorder()
	OptionalAuth(auth)(handler).ServeHTTP(rec, withSessionCookie(httptest.NewRequest(http.MethodGet, "/", nil), "sess-student"))
	assert.True(t, sawSession)
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: "/"},
		{name: "relative path", input: "/student", expected: "/student"},
		{name: "path with query", input: "/student?tab=courses", expected: "/student?tab=courses"},
		{name: "absolute url", input: "https://evil.example.com/", expected: "/"},
		{name: "protocol relative", input: "//evil.example.com", expected: "/"},
		{name: "no leading slash", input: "student", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, safeRedirectPath(tt.input))
		})
	}
}

func TestRecoverMiddleware(t *testing.T) {
	logger := discardLogger()
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recover(logger)(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
