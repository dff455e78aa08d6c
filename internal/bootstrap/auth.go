package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/studyzone/studyzone-api/config"
	"github.com/studyzone/studyzone-api/internal/adapters/authroles"
	"github.com/studyzone/studyzone-api/internal/adapters/devauth"
	"github.com/studyzone/studyzone-api/internal/adapters/localauth"
	"github.com/studyzone/studyzone-api/internal/adapters/oidc"
	redisadapter "github.com/studyzone/studyzone-api/internal/adapters/redis"
	"github.com/studyzone/studyzone-api/internal/data"
	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/ports"
	"github.com/studyzone/studyzone-api/internal/service"
)

// AuthDeps contains dependencies for building the auth service.
type AuthDeps struct {
	Auth        config.AuthConfig
	HTTP        config.HTTPConfig
	Users       *data.UserRepo
	Profiles    *data.ProfileRepo
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService wires the identity provider selected by AUTH_MODE into
// an AuthService backed by the Redis session store.
func BuildAuthService(deps AuthDeps) (*service.AuthService, error) {
	if deps.RedisClient == nil {
		return nil, fmt.Errorf("auth service requires a redis client")
	}
	if deps.Profiles == nil {
		return nil, fmt.Errorf("auth service requires a profile repo")
	}

	sessionStore := redisadapter.NewSessionStoreWithPrefix(deps.RedisClient, "session:")

	opts := service.AuthServiceOptions{
		Sessions: sessionStore,
		Profiles: deps.Profiles,
		Bootstrap: service.BootstrapAdmin{
			Email:    deps.Auth.BootstrapAdmin.Email,
			Password: deps.Auth.BootstrapAdmin.Password,
			FullName: deps.Auth.BootstrapAdmin.FullName,
		},
		Logger: deps.Logger,
	}

	switch deps.Auth.Mode {
	case config.AuthModeMock:
		role, err := domainauth.ParseRole(deps.Auth.DevAuth.Role)
		if err != nil {
			return nil, fmt.Errorf("dev auth role: %w", err)
		}
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:          deps.Auth.DevAuth.UserID,
			Email:           deps.Auth.DevAuth.Email,
			FullName:        deps.Auth.DevAuth.FullName,
			Role:            role,
			SessionDuration: deps.Auth.SessionDuration,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev auth provider: %w", err)
		}
		opts.Provider = prov

	case config.AuthModePassword, config.AuthModeOIDC:
		if deps.Users == nil {
			return nil, fmt.Errorf("password auth requires a user repo")
		}
		prov, err := localauth.NewProvider(localauth.Options{
			Users:           deps.Users,
			SessionDuration: deps.Auth.SessionDuration,
			BcryptCost:      deps.Auth.BcryptCost,
		})
		if err != nil {
			return nil, fmt.Errorf("build local auth provider: %w", err)
		}
		opts.Provider = prov
		opts.Provisioner = prov

	default:
		return nil, fmt.Errorf("unknown auth mode %q", deps.Auth.Mode)
	}

	if deps.Auth.SSOEnabled() {
		federated, err := buildFederatedProvider(deps.Auth.SSO, deps.HTTP)
		if err != nil {
			return nil, err
		}
		opts.Federated = federated
		opts.Roles = authroles.StaticRoleMapper{AdminGroup: deps.Auth.SSO.AdminGroup}
	}

	return service.NewAuthService(opts)
}

func buildFederatedProvider(sso config.SSOConfig, httpCfg config.HTTPConfig) (ports.FederatedProvider, error) {
	if sso.ClientID == "" || sso.ClientSecret == "" {
		return nil, fmt.Errorf("sso requires a client id and secret")
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     sso.ClientID,
		ClientSecret: sso.ClientSecret,
		RedirectURL:  httpCfg.BaseURL + "/auth/sso/callback",
		Scope:        sso.Scope,
		DiscoveryURL: sso.DiscoveryURL,
	})
	if err != nil {
		return nil, fmt.Errorf("build sso provider: %w", err)
	}
	return prov, nil
}
