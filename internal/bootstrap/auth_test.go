package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyzone/studyzone-api/config"
	"github.com/studyzone/studyzone-api/internal/data"
)

func testAuthConfig(mode config.AuthMode) config.AuthConfig {
	cfg := config.AuthConfig{
		Mode: mode,
		DevAuth: config.DevAuthConfig{
			UserID:   "dev-user",
			Email:    "dev@studyzone.com",
			FullName: "Dev User",
			Role:     "admin",
		},
		BootstrapAdmin: config.BootstrapAdminConfig{
			Email:    "admin@studyzone.com",
			Password: "admin123",
			FullName: "StudyZone Admin",
		},
	}
	cfg.Sanitize()
	return cfg
}

func TestBuildAuthService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	profiles := data.NewProfileRepo(nil)
	users := data.NewUserRepo(nil)

	t.Run("requires redis client", func(t *testing.T) {
		_, err := BuildAuthService(AuthDeps{
			Auth:     testAuthConfig(config.AuthModeMock),
			Profiles: profiles,
			Logger:   logger,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis client")
	})

	t.Run("requires profile repo", func(t *testing.T) {
		_, err := BuildAuthService(AuthDeps{
			Auth:        testAuthConfig(config.AuthModeMock),
			RedisClient: redisClient,
			Logger:      logger,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "profile repo")
	})

	t.Run("mock mode", func(t *testing.T) {
		svc, err := BuildAuthService(AuthDeps{
			Auth:        testAuthConfig(config.AuthModeMock),
			Profiles:    profiles,
			RedisClient: redisClient,
			Logger:      logger,
		})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("password mode requires user repo", func(t *testing.T) {
		_, err := BuildAuthService(AuthDeps{
			Auth:        testAuthConfig(config.AuthModePassword),
			Profiles:    profiles,
			RedisClient: redisClient,
			Logger:      logger,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user repo")
	})

	t.Run("password mode", func(t *testing.T) {
		svc, err := BuildAuthService(AuthDeps{
			Auth:        testAuthConfig(config.AuthModePassword),
			Users:       users,
			Profiles:    profiles,
			RedisClient: redisClient,
			Logger:      logger,
		})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("invalid dev role", func(t *testing.T) {
		cfg := testAuthConfig(config.AuthModeMock)
		cfg.DevAuth.Role = "superuser"
		_, err := BuildAuthService(AuthDeps{
			Auth:        cfg,
			Profiles:    profiles,
			RedisClient: redisClient,
			Logger:      logger,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dev auth role")
	})
}
