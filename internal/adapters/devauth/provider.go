package devauth

// Package devauth provides a config-driven IdentityProvider for local
// development. It accepts any password for its single configured account.

import (
	"context"
	"errors"
	"strings"
	"time"

	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/ports"
)

// Config controls the dev auth provider behavior.
type Config struct {
	UserID          string
	Email           string
	FullName        string
	Role            domainauth.Role
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.IdentityProvider for local development.
// SignIn matches the configured email case-insensitively and ignores the
// password entirely. SignUp echoes the input back as a throwaway identity.
type Provider struct {
	cfg Config
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if !cfg.Role.Valid() {
		cfg.Role = domainauth.RoleStudent
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = 8 * time.Hour
	}
	return &Provider{cfg: cfg}, nil
}

func (p *Provider) SignIn(_ context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	if !strings.EqualFold(creds.Email, p.cfg.Email) {
		return domainauth.Identity{}, errors.New("dev auth: unknown email")
	}
	return domainauth.Identity{
		UserID:    p.cfg.UserID,
		Email:     p.cfg.Email,
		FullName:  p.cfg.FullName,
		Role:      p.cfg.Role,
		ExpiresAt: time.Now().Add(p.cfg.SessionDuration),
	}, nil
}

func (p *Provider) SignUp(_ context.Context, in ports.SignUpInput) (domainauth.Identity, error) {
	if in.Email == "" {
		return domainauth.Identity{}, errors.New("dev auth: email is required")
	}
	return domainauth.Identity{
		UserID:    "dev-" + strings.ToLower(in.Email),
		Email:     strings.ToLower(in.Email),
		FullName:  in.FullName,
		Role:      domainauth.RoleStudent,
		ExpiresAt: time.Now().Add(p.cfg.SessionDuration),
	}, nil
}
