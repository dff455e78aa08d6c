package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/studyzone/studyzone-api/config"
	"github.com/studyzone/studyzone-api/internal/adapters/llm"
	"github.com/studyzone/studyzone-api/internal/adapters/storage"
	"github.com/studyzone/studyzone-api/internal/data"
	"github.com/studyzone/studyzone-api/internal/observability/statsd"
	"github.com/studyzone/studyzone-api/internal/service"
)

// devDownloadTokenSecret backs download tokens when no secret is
// configured. Dev mode only; production requires an explicit secret.
const devDownloadTokenSecret = "studyzone-dev-download-token-secret"

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Profiles      *service.ProfileService
	Courses       *service.CourseService
	Enrollments   *service.EnrollmentService
	Materials     *service.MaterialService // nil when storage is not configured
	Announcements *service.AnnouncementService
	Blog          *service.BlogService
	Chat          *service.ChatService // nil when the assistant is not configured
	Points        *service.PointsService
	Payments      *service.PaymentService
	Pruner        *service.ChatPruner

	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Users         *data.UserRepo
	Profiles      *data.ProfileRepo
	Courses       *data.CourseRepo
	Enrollments   *data.EnrollmentRepo
	Materials     *data.MaterialRepo
	Announcements *data.AnnouncementRepo
	Blog          *data.BlogRepo
	Chat          *data.ChatRepo
	Points        *data.PointsRepo
	Payments      *data.PaymentRepo
}

func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		Users:         data.NewUserRepo(db),
		Profiles:      data.NewProfileRepo(db),
		Courses:       data.NewCourseRepo(db),
		Enrollments:   data.NewEnrollmentRepo(db),
		Materials:     data.NewMaterialRepo(db),
		Announcements: data.NewAnnouncementRepo(db),
		Blog:          data.NewBlogRepo(db),
		Chat:          data.NewChatRepo(db),
		Points:        data.NewPointsRepo(db),
		Payments:      data.NewPaymentRepo(db),
	}
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

// InitServices builds the full service container from configuration and
// shared connections.
func InitServices(ctx context.Context, deps ServiceDeps) (*ServiceContainer, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := deps.Config
	repos := buildRepositories(deps.DB)
	obs := buildObservability(logger, cfg.Observability)

	auth, err := BuildAuthService(AuthDeps{
		Auth:        cfg.Auth,
		HTTP:        cfg.HTTP,
		Users:       repos.Users,
		Profiles:    repos.Profiles,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth service: %w", err)
	}

	profiles, err := service.NewProfileService(service.ProfileServiceOptions{
		Profiles: repos.Profiles,
		Users:    repos.Users,
	})
	if err != nil {
		return nil, fmt.Errorf("build profile service: %w", err)
	}

	courses, err := service.NewCourseService(service.CourseServiceOptions{
		Courses: repos.Courses,
	})
	if err != nil {
		return nil, fmt.Errorf("build course service: %w", err)
	}

	enrollments, err := service.NewEnrollmentService(service.EnrollmentServiceOptions{
		Enrollments: repos.Enrollments,
		Points:      repos.Points,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build enrollment service: %w", err)
	}

	announcements, err := service.NewAnnouncementService(service.AnnouncementServiceOptions{
		Announcements: repos.Announcements,
	})
	if err != nil {
		return nil, fmt.Errorf("build announcement service: %w", err)
	}

	blog, err := service.NewBlogService(service.BlogServiceOptions{
		Posts: repos.Blog,
	})
	if err != nil {
		return nil, fmt.Errorf("build blog service: %w", err)
	}

	points, err := service.NewPointsService(service.PointsServiceOptions{
		Points: repos.Points,
	})
	if err != nil {
		return nil, fmt.Errorf("build points service: %w", err)
	}

	payments, err := service.NewPaymentService(service.PaymentServiceOptions{
		Payments: repos.Payments,
	})
	if err != nil {
		return nil, fmt.Errorf("build payment service: %w", err)
	}

	materials, err := buildMaterialService(ctx, cfg, repos, logger)
	if err != nil {
		return nil, err
	}

	chat, err := buildChatService(cfg, repos, obs.MetricsSink, logger)
	if err != nil {
		return nil, err
	}

	pruner, err := service.NewChatPruner(service.ChatPrunerOptions{
		Messages:  repos.Chat,
		Interval:  cfg.AI.PruneInterval,
		Retention: cfg.AI.Retention,
		Metrics:   obs.MetricsSink,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build chat pruner: %w", err)
	}

	return &ServiceContainer{
		Auth:          auth,
		Profiles:      profiles,
		Courses:       courses,
		Enrollments:   enrollments,
		Materials:     materials,
		Announcements: announcements,
		Blog:          blog,
		Chat:          chat,
		Points:        points,
		Payments:      payments,
		Pruner:        pruner,
		Observability: obs,
	}, nil
}

func buildMaterialService(
	ctx context.Context,
	cfg *config.AppConfig,
	repos *serviceRepositories,
	logger *slog.Logger,
) (*service.MaterialService, error) {
	if !cfg.Storage.IsEnabled() {
		logger.Info("material storage not configured, material endpoints disabled")
		return nil, nil
	}

	secret := cfg.Storage.DownloadTokenSecret
	if secret == "" {
		if !cfg.IsDev {
			return nil, fmt.Errorf("STORAGE_DOWNLOAD_TOKEN_SECRET is required outside dev mode")
		}
		secret = devDownloadTokenSecret
	}

	objects, err := storage.NewS3Store(ctx, storage.Config{
		Bucket:    cfg.Storage.Bucket,
		Prefix:    cfg.Storage.Prefix,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		MaxSize:   cfg.Storage.MaxUploadSize,
		URLExpiry: cfg.Storage.URLExpiry,
	})
	if err != nil {
		return nil, fmt.Errorf("build object store: %w", err)
	}

	materials, err := service.NewMaterialService(service.MaterialServiceOptions{
		Materials:   repos.Materials,
		Objects:     objects,
		Enrollments: repos.Enrollments,
		Points:      repos.Points,
		TokenSecret: []byte(secret),
		TokenTTL:    cfg.Storage.DownloadTokenTTL,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build material service: %w", err)
	}
	return materials, nil
}

func buildChatService(
	cfg *config.AppConfig,
	repos *serviceRepositories,
	metrics *statsd.Client,
	logger *slog.Logger,
) (*service.ChatService, error) {
	if !cfg.AI.IsEnabled() {
		logger.Info("study assistant not configured, chat endpoints disabled")
		return nil, nil
	}

	client, err := llm.NewClient(llm.Config{
		URL:     cfg.AI.CompletionURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build completion client: %w", err)
	}

	chat, err := service.NewChatService(service.ChatServiceOptions{
		Messages:          repos.Chat,
		Client:            client,
		Points:            repos.Points,
		ReplyPath:         cfg.AI.ReplyPath,
		SystemPrompt:      cfg.AI.SystemPrompt,
		ContextWindow:     cfg.AI.ContextWindow,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
		Metrics:           metrics,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build chat service: %w", err)
	}
	return chat, nil
}
