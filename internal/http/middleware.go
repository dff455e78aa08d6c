package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/observability/metrics"
	"github.com/studyzone/studyzone-api/internal/observability/statsd"
)

// Logging returns a middleware that logs HTTP requests and responses and
// emits per-request metrics when a sink is configured.
func Logging(logger *slog.Logger, sink statsd.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", elapsed),
			)
			metrics.EmitRequest(sink, metrics.RequestMetric{
				Route:    routeTag(r),
				Method:   r.Method,
				Status:   ww.status,
				Duration: elapsed,
			})
		})
	}
}

// routeTag returns the matched route pattern when the mux recorded one,
// falling back to the raw path. Patterns keep metric cardinality bounded.
func routeTag(r *http.Request) string {
	if r.Pattern != "" {
		// Pattern includes the method prefix ("GET /api/courses/{slug}").
		if _, route, ok := strings.Cut(r.Pattern, " "); ok {
			return route
		}
		return r.Pattern
	}
	return r.URL.Path
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns a middleware that requires an authenticated session.
// Unauthenticated API requests receive 401 JSON.
func RequireAuth(authSvc AuthSessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := getSessionFromRequest(r, authSvc)
			if session == nil {
				writeAuthRequired(w)
				return
			}

			ctx := SetSessionInContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns a middleware that requires an admin session.
// Non-admin API requests receive 403 JSON.
func RequireAdmin(authSvc AuthSessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := getSessionFromRequest(r, authSvc)
			if session == nil {
				writeAuthRequired(w)
				return
			}
			if !session.IsAdmin() {
				writeForbidden(w)
				return
			}

			ctx := SetSessionInContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth returns a middleware that attaches the session to the
// context when present and continues either way.
func OptionalAuth(authSvc AuthSessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session := getSessionFromRequest(r, authSvc); session != nil {
				r = r.WithContext(SetSessionInContext(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GateBrowser returns a middleware that enforces a route gate for a browser
// subtree. The gate's decision drives the response: pending never happens
// server-side (the session lookup is synchronous), unauthenticated visitors
// are redirected to the gate's login destination, and wrong-role visitors
// are redirected to their own home.
func GateBrowser(authSvc AuthSessionService, gate domainauth.GateConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := getSessionFromRequest(r, authSvc)
			decision := gate.Evaluate(authStateFor(session))

			switch decision.Outcome {
			case domainauth.GateAuthorized:
				ctx := SetSessionInContext(r.Context(), session)
				next.ServeHTTP(w, r.WithContext(ctx))
			case domainauth.GateRedirect:
				target := decision.Target
				if target == gate.RedirectTo || (gate.RedirectTo == "" && target == domainauth.PathLogin) {
					// Heading to a login page: preserve where the visitor
					// wanted to be.
					target += "?redirect_uri=" + url.QueryEscape(safeRedirectPath(r.URL.RequestURI()))
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
			default:
				// GatePending is unreachable with a synchronous resolver.
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			}
		})
	}
}

// authStateFor projects a resolved (or absent) session into the AuthState
// shape the gate evaluates. Loading is always false here: by the time the
// middleware runs, the session lookup has settled.
func authStateFor(session *domainauth.Session) domainauth.AuthState {
	if session == nil {
		return domainauth.SignedOut()
	}
	return domainauth.AuthState{
		User: &domainauth.User{
			ID:       session.UserID,
			Email:    session.Email,
			FullName: session.FullName,
		},
		Session: session,
		IsAdmin: session.IsAdmin(),
	}
}

// getSessionFromRequest retrieves and validates a session from the request.
func getSessionFromRequest(r *http.Request, authSvc AuthSessionService) *domainauth.Session {
	sessionCookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}

	session, err := authSvc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		return nil
	}
	return session
}

func writeAuthRequired(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}

func writeForbidden(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusForbidden,
		ErrCode: "insufficient_permissions",
		Err:     errors.New("insufficient permissions"),
	})
}

// safeRedirectPath ensures the provided redirect is a same-origin relative
// path starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
