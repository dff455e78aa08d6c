package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
)

// Credentials carries an email/password pair for the password flow.
type Credentials struct {
	Email    string
	Password string
}

// SignUpInput carries inputs for creating a new account.
type SignUpInput struct {
	Email    string
	Password string
	FullName string
}

// IdentityProvider authenticates users against a credential backend.
type IdentityProvider interface {
	// SignIn verifies credentials and returns the authenticated identity.
	SignIn(ctx context.Context, creds Credentials) (domainauth.Identity, error)

	// SignUp creates a new account and returns its identity.
	SignUp(ctx context.Context, in SignUpInput) (domainauth.Identity, error)
}

// AccountProvisioner creates accounts outside the normal sign-up flow, such
// as the bootstrap admin pair. EnsureAccount is idempotent.
type AccountProvisioner interface {
	EnsureAccount(ctx context.Context, in SignUpInput, role domainauth.Role) (domainauth.Identity, error)
}

// BeginInput carries inputs for initiating a federated auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// FederatedProvider initiates and completes an authentication flow against an IdP.
// Used when the deployment delegates sign-in to a university SSO.
type FederatedProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error

	// DeleteForUser removes every session belonging to a user. Backs the
	// global sign-out operation.
	DeleteForUser(ctx context.Context, userID string) error
}

// ProfileStore is the slice of profile persistence the auth flows need.
// Satisfied by *data.ProfileRepo.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*domainauth.Profile, error)
	Upsert(ctx context.Context, id string, fullName *string, role domainauth.Role) (*domainauth.Profile, error)
}

// RoleMapper maps provider group claims to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
