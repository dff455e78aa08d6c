package httpx

import (
	"log/slog"
	"net/http"

	"github.com/studyzone/studyzone-api/internal/observability/statsd"
	"github.com/studyzone/studyzone-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth          *service.AuthService
	Profiles      *service.ProfileService
	Courses       *service.CourseService
	Enrollments   *service.EnrollmentService
	Materials     *service.MaterialService
	Announcements *service.AnnouncementService
	Blog          *service.BlogService
	Chat          *service.ChatService
	Points        *service.PointsService
	Payments      *service.PaymentService

	CookieDomain string
	SSOEnabled   bool
	Metrics      statsd.Sink  // optional
	Logger       *slog.Logger // optional
}

// NewRouter creates and configures the HTTP router with the full
// middleware chain applied.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		SSOEnabled:   services.SSOEnabled,
		Logger:       logger,
	}
	registerAuthRoutes(mux, authHandlers, services)
	registerBrowserRoutes(mux, services)
	registerAPIRoutes(mux, services)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return chain(mux, Recover(logger), Logging(logger, services.Metrics))
}

// chain applies middleware outermost-first.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, services RouterServices) {
	mux.HandleFunc("POST /auth/signup", h.SignUp)
	mux.HandleFunc("POST /auth/login", h.SignIn)
	mux.HandleFunc("POST /auth/logout", h.SignOut)
	mux.HandleFunc("GET /auth/status", h.Status)
	if services.SSOEnabled {
		mux.HandleFunc("GET /auth/sso/login", h.SSOLogin)
		mux.HandleFunc("GET /auth/sso/callback", h.SSOCallback)
	}
}

func registerBrowserRoutes(mux *http.ServeMux, services RouterServices) {
	browser := &BrowserHandlers{Auth: services.Auth, SSOEnabled: services.SSOEnabled}

	mux.HandleFunc("GET /auth/login", browser.LoginPage)
	mux.HandleFunc("GET /admin/login", browser.AdminLoginPage)

	studentGate := GateBrowser(services.Auth, StudentGate())
	adminGate := GateBrowser(services.Auth, AdminGate())
	mux.Handle("GET /student", studentGate(http.HandlerFunc(browser.StudentHome)))
	mux.Handle("GET /student/", studentGate(http.HandlerFunc(browser.StudentHome)))
	mux.Handle("GET /admin", adminGate(http.HandlerFunc(browser.AdminHome)))
	mux.Handle("GET /admin/", adminGate(http.HandlerFunc(browser.AdminHome)))
}

func registerAPIRoutes(mux *http.ServeMux, services RouterServices) {
	requireAuth := RequireAuth(services.Auth)
	requireAdmin := RequireAdmin(services.Auth)

	// Profiles and roster.
	profiles := &ProfileHandlers{Svc: services.Profiles}
	mux.Handle("GET /api/profile", requireAuth(http.HandlerFunc(profiles.Get)))
	mux.Handle("PUT /api/profile", requireAuth(http.HandlerFunc(profiles.Update)))
	mux.Handle("GET /api/students", requireAdmin(http.HandlerFunc(profiles.ListStudents)))
	mux.Handle("PUT /api/students/{id}/role", requireAdmin(http.HandlerFunc(profiles.SetRole)))

	// Course catalogue. Listing and detail are public.
	courses := &CourseHandlers{Svc: services.Courses}
	mux.HandleFunc("GET /api/courses", courses.List)
	mux.HandleFunc("GET /api/courses/{slug}", courses.GetBySlug)
	mux.Handle("POST /api/courses", requireAdmin(http.HandlerFunc(courses.Create)))
	mux.Handle("PUT /api/courses/{id}", requireAdmin(http.HandlerFunc(courses.Update)))
	mux.Handle("DELETE /api/courses/{id}", requireAdmin(http.HandlerFunc(courses.Delete)))

	// Enrollments.
	enrollments := &EnrollmentHandlers{Svc: services.Enrollments}
	mux.Handle("POST /api/enrollments", requireAuth(http.HandlerFunc(enrollments.Enroll)))
	mux.Handle("GET /api/enrollments", requireAuth(http.HandlerFunc(enrollments.ListMine)))
	mux.Handle("DELETE /api/enrollments/{id}", requireAuth(http.HandlerFunc(enrollments.Unenroll)))
	mux.Handle("GET /api/courses/{id}/enrollments", requireAdmin(http.HandlerFunc(enrollments.ListForCourse)))

	// Materials. Downloads flow through short-lived signed tokens. The
	// whole surface is absent when no storage backend is configured.
	if services.Materials != nil {
		materials := &MaterialHandlers{Svc: services.Materials}
		mux.Handle("GET /api/courses/{id}/materials", requireAuth(http.HandlerFunc(materials.ListForCourse)))
		mux.Handle("POST /api/courses/{id}/materials", requireAdmin(http.HandlerFunc(materials.Upload)))
		mux.Handle("PUT /api/materials/{id}", requireAdmin(http.HandlerFunc(materials.Update)))
		mux.Handle("DELETE /api/materials/{id}", requireAdmin(http.HandlerFunc(materials.Delete)))
		mux.Handle("GET /api/materials/{id}/download", requireAuth(http.HandlerFunc(materials.Download)))
		mux.HandleFunc("GET /api/materials/download", materials.Redeem)
	}

	// Announcements. Reading requires a session; writing is admin-only.
	announcements := &AnnouncementHandlers{Svc: services.Announcements}
	mux.Handle("GET /api/announcements", requireAuth(http.HandlerFunc(announcements.List)))
	mux.Handle("POST /api/announcements", requireAdmin(http.HandlerFunc(announcements.Create)))
	mux.Handle("PUT /api/announcements/{id}", requireAdmin(http.HandlerFunc(announcements.Update)))
	mux.Handle("DELETE /api/announcements/{id}", requireAdmin(http.HandlerFunc(announcements.Delete)))

	// Blog. Public read surface plus admin CRUD.
	blog := &BlogHandlers{Svc: services.Blog}
	mux.HandleFunc("GET /api/blog", blog.ListPublished)
	mux.HandleFunc("GET /api/blog/{slug}", blog.GetBySlug)
	mux.Handle("GET /api/admin/blog", requireAdmin(http.HandlerFunc(blog.ListAll)))
	mux.Handle("POST /api/admin/blog", requireAdmin(http.HandlerFunc(blog.Create)))
	mux.Handle("PUT /api/admin/blog/{id}", requireAdmin(http.HandlerFunc(blog.Update)))
	mux.Handle("DELETE /api/admin/blog/{id}", requireAdmin(http.HandlerFunc(blog.Delete)))

	// AI study helper. Absent when no completion endpoint is configured.
	if services.Chat != nil {
		chatHandlers := &ChatHandlers{Svc: services.Chat}
		mux.Handle("POST /api/ai/chat", requireAuth(http.HandlerFunc(chatHandlers.Chat)))
		mux.Handle("GET /api/ai/history", requireAuth(http.HandlerFunc(chatHandlers.History)))
	}

	// Engagement points.
	points := &PointsHandlers{Svc: services.Points}
	mux.Handle("GET /api/points", requireAuth(http.HandlerFunc(points.Mine)))
	mux.Handle("GET /api/points/leaderboard", requireAdmin(http.HandlerFunc(points.Leaderboard)))

	// Payments and revenue.
	payments := &PaymentHandlers{Svc: services.Payments}
	mux.Handle("POST /api/payments", requireAuth(http.HandlerFunc(payments.Record)))
	mux.Handle("GET /api/payments", requireAuth(http.HandlerFunc(payments.ListMine)))
	mux.Handle("PUT /api/payments/{id}/status", requireAdmin(http.HandlerFunc(payments.Settle)))
	mux.Handle("GET /api/revenue/summary", requireAdmin(http.HandlerFunc(payments.RevenueSummary)))
}
