package httpx

import (
	"io"
	"net/http"

	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
)

// BrowserHandlers serves the minimal browser entry points. The application
// is an API surface first; these pages exist only so the gate has concrete
// destinations to land visitors on.
type BrowserHandlers struct {
	Auth       AuthSessionService
	SSOEnabled bool
}

// LoginPage serves the general login entry.
// GET /auth/login. Authenticated visitors are redirected away to their home.
func (h *BrowserHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if session := getSessionFromRequest(r, h.Auth); session != nil {
		http.Redirect(w, r, homeFor(*session), http.StatusSeeOther)
		return
	}
	if h.SSOEnabled {
		http.Redirect(w, r, "/auth/sso/login?redirect_uri="+safeRedirectPath(r.URL.Query().Get("redirect_uri")), http.StatusSeeOther)
		return
	}
	writePage(w, "StudyZone sign in. POST credentials to /auth/login.")
}

// AdminLoginPage serves the admin login entry.
// GET /admin/login. Admins are redirected to the admin home; signed-in
// students are sent to theirs.
func (h *BrowserHandlers) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	if session := getSessionFromRequest(r, h.Auth); session != nil {
		http.Redirect(w, r, homeFor(*session), http.StatusSeeOther)
		return
	}
	writePage(w, "StudyZone admin sign in. POST credentials to /auth/login.")
}

// StudentHome serves the gated student landing page.
// GET /student.
func (h *BrowserHandlers) StudentHome(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	writePage(w, "StudyZone student home: "+session.Email)
}

// AdminHome serves the gated admin landing page.
// GET /admin.
func (h *BrowserHandlers) AdminHome(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	writePage(w, "StudyZone admin home: "+session.Email)
}

// StudentGate is the gate for the student subtree: authentication required,
// unauthenticated visitors go to the general login, admins are redirected
// away to the admin home.
func StudentGate() domainauth.GateConfig {
	return domainauth.GateConfig{RedirectTo: domainauth.PathLogin}
}

// AdminGate is the gate for the admin subtree: admin role required,
// unauthenticated visitors go to the admin login, signed-in students are
// redirected to the student home.
func AdminGate() domainauth.GateConfig {
	return domainauth.GateConfig{RequireAdmin: true, RedirectTo: domainauth.PathAdminLogin}
}

func writePage(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body+"\n"); err != nil {
		return
	}
}
