// Package devseed populates a development database with demo accounts and
// sample content. It is idempotent: rows that already exist are left alone.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/studyzone/studyzone-api/internal/adapters/localauth"
	"github.com/studyzone/studyzone-api/internal/data"
	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/domain/model"
	"github.com/studyzone/studyzone-api/internal/ports"
)

const (
	demoAdminEmail    = "admin@studyzone.com"
	demoAdminPassword = "admin123"
	demoStudentEmail  = "student@studyzone.com"
	demoStudentPass   = "student123"
)

// Seeder creates demo data through the same repositories the application uses.
type Seeder struct {
	users       *data.UserRepo
	profiles    *data.ProfileRepo
	courses     *data.CourseRepo
	enrollments *data.EnrollmentRepo
	announce    *data.AnnouncementRepo
	blog        *data.BlogRepo
	accounts    *localauth.Provider
	log         *slog.Logger
}

// New constructs a Seeder over the given database handle.
func New(db *sql.DB, logger *slog.Logger) (*Seeder, error) {
	if db == nil {
		return nil, errors.New("database handle is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	users := data.NewUserRepo(db)
	accounts, err := localauth.NewProvider(localauth.Options{Users: users})
	if err != nil {
		return nil, fmt.Errorf("build account provider: %w", err)
	}

	return &Seeder{
		users:       users,
		profiles:    data.NewProfileRepo(db),
		courses:     data.NewCourseRepo(db),
		enrollments: data.NewEnrollmentRepo(db),
		announce:    data.NewAnnouncementRepo(db),
		blog:        data.NewBlogRepo(db),
		accounts:    accounts,
		log:         logger.With("component", "devseed"),
	}, nil
}

// Run seeds demo accounts, courses, announcements, and blog posts.
func (s *Seeder) Run(ctx context.Context) error {
	admin, err := s.ensureAccount(ctx, demoAdminEmail, demoAdminPassword, "StudyZone Admin", domainauth.RoleAdmin)
	if err != nil {
		return err
	}
	student, err := s.ensureAccount(ctx, demoStudentEmail, demoStudentPass, "Demo Student", domainauth.RoleStudent)
	if err != nil {
		return err
	}

	courseIDs, err := s.seedCourses(ctx, admin)
	if err != nil {
		return err
	}
	if err := s.seedEnrollment(ctx, student, courseIDs); err != nil {
		return err
	}
	if err := s.seedAnnouncements(ctx, admin, courseIDs); err != nil {
		return err
	}
	if err := s.seedBlog(ctx, admin); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "development seed complete",
		"admin", demoAdminEmail, "student", demoStudentEmail)
	return nil
}

func (s *Seeder) ensureAccount(
	ctx context.Context,
	email, password, fullName string,
	role domainauth.Role,
) (string, error) {
	identity, err := s.accounts.EnsureAccount(ctx, ports.SignUpInput{
		Email:    email,
		Password: password,
		FullName: fullName,
	}, role)
	if err != nil {
		return "", fmt.Errorf("ensure account %s: %w", email, err)
	}
	if _, err := s.profiles.Upsert(ctx, identity.UserID, &fullName, role); err != nil {
		return "", fmt.Errorf("ensure profile %s: %w", email, err)
	}
	return identity.UserID, nil
}

func (s *Seeder) seedCourses(ctx context.Context, instructorID string) ([]string, error) {
	samples := []model.CreateCourseRequest{
		{Title: "Introduction to Computer Science", Slug: "intro-to-cs", Description: strPtr("Foundations of computing, algorithms, and problem solving.")},
		{Title: "Calculus I", Slug: "calculus-1", Description: strPtr("Limits, derivatives, and integrals of single-variable functions.")},
		{Title: "Academic Writing", Slug: "academic-writing", Description: strPtr("Structuring essays, citing sources, and editing your own work.")},
	}

	ids := make([]string, 0, len(samples))
	for i := range samples {
		req := samples[i]
		course, err := s.courses.Create(ctx, instructorID, &req)
		if errors.Is(err, data.ErrCourseSlugExists) {
			existing, getErr := s.courses.GetBySlug(ctx, req.Slug)
			if getErr != nil {
				return nil, fmt.Errorf("look up course %s: %w", req.Slug, getErr)
			}
			ids = append(ids, existing.ID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("seed course %s: %w", req.Slug, err)
		}
		ids = append(ids, course.ID)
	}
	return ids, nil
}

func (s *Seeder) seedEnrollment(ctx context.Context, studentID string, courseIDs []string) error {
	if len(courseIDs) == 0 {
		return nil
	}
	_, err := s.enrollments.Create(ctx, &model.CreateEnrollmentRequest{
		StudentID: studentID,
		CourseID:  courseIDs[0],
	})
	if err != nil && !errors.Is(err, data.ErrAlreadyEnrolled) {
		return fmt.Errorf("seed enrollment: %w", err)
	}
	return nil
}

func (s *Seeder) seedAnnouncements(ctx context.Context, adminID string, courseIDs []string) error {
	existing, err := s.announce.List(ctx, model.AnnouncementsListOptions{GlobalOnly: true, Limit: 1})
	if err != nil {
		return fmt.Errorf("check announcements: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	if _, err := s.announce.Create(ctx, adminID, &model.CreateAnnouncementRequest{
		Title:    "Welcome to StudyZone",
		Content:  "Browse the course catalogue and enroll to get started.",
		IsGlobal: true,
	}); err != nil {
		return fmt.Errorf("seed global announcement: %w", err)
	}

	if len(courseIDs) > 0 {
		if _, err := s.announce.Create(ctx, adminID, &model.CreateAnnouncementRequest{
			Title:    "First lecture materials posted",
			Content:  "Slides for week one are now available under course materials.",
			CourseID: &courseIDs[0],
		}); err != nil {
			return fmt.Errorf("seed course announcement: %w", err)
		}
	}
	return nil
}

func (s *Seeder) seedBlog(ctx context.Context, adminID string) error {
	posts := []model.CreateBlogPostRequest{
		{
			Title:    "Five study habits that actually work",
			Slug:     "study-habits-that-work",
			Category: "study-tips",
			Excerpt:  strPtr("Spaced repetition beats cramming every time."),
			Content:  "Short, regular sessions with active recall outperform marathon reviews.",
			Publish:  true,
		},
		{
			Title:    "Platform roadmap",
			Slug:     "platform-roadmap",
			Category: "news",
			Content:  "Draft notes on upcoming features.",
			Publish:  false,
		},
	}

	for i := range posts {
		req := posts[i]
		if _, err := s.blog.Create(ctx, adminID, &req); err != nil {
			if errors.Is(err, data.ErrBlogPostSlugExists) {
				continue
			}
			return fmt.Errorf("seed blog post %s: %w", req.Slug, err)
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }
