package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModePassword verifies email/password pairs against stored hashes.
	AuthModePassword AuthMode = "password"
	// AuthModeOIDC uses the university single sign-on provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "password", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: password, oidc, mock)", v)
	}
}

// SSOConfig contains university single sign-on (OIDC) configuration.
type SSOConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`

	// AdminGroup is the IdP group claim that maps to the admin role.
	// Everyone else authenticates as a student.
	AdminGroup string `env:"ADMIN_GROUP" envDefault:"studyzone-admins"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID   string `env:"USER_ID"   envDefault:"dev-user"`
	Email    string `env:"EMAIL"     envDefault:"dev@studyzone.com"`
	FullName string `env:"FULL_NAME" envDefault:"Dev User"`
	Role     string `env:"ROLE"      envDefault:"admin"`
}

// BootstrapAdminConfig is the reserved admin credential pair. Sign-in with
// this pair always resolves to an admin account, even when the stored
// profile was downgraded.
type BootstrapAdminConfig struct {
	Email    string `env:"EMAIL"     envDefault:"admin@studyzone.com"`
	Password string `env:"PASSWORD"  envDefault:"admin123"`
	FullName string `env:"FULL_NAME" envDefault:"StudyZone Admin"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"password"`

	// SessionDuration is the lifetime of a login session.
	SessionDuration time.Duration `env:"AUTH_SESSION_DURATION" envDefault:"8h"`

	// BcryptCost overrides the password hashing cost. Zero uses the
	// library default.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"0"`

	// SSO configuration (used when Mode=oidc, or alongside password mode
	// when a discovery URL is set).
	SSO SSOConfig `envPrefix:"SSO_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// BootstrapAdmin is provisioned at startup when missing.
	BootstrapAdmin BootstrapAdminConfig `envPrefix:"BOOTSTRAP_ADMIN_"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionDuration <= 0 {
		a.SessionDuration = 8 * time.Hour
	}
	if a.BcryptCost < 0 {
		a.BcryptCost = 0
	}
	a.SSO.DiscoveryURL = strings.TrimSpace(a.SSO.DiscoveryURL)
	a.BootstrapAdmin.Email = strings.ToLower(strings.TrimSpace(a.BootstrapAdmin.Email))
}

// SSOEnabled reports whether the federated sign-in flow should be wired.
func (a *AuthConfig) SSOEnabled() bool {
	return a.Mode != AuthModeMock && a.SSO.DiscoveryURL != ""
}
