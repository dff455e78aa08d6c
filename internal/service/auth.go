package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/ports"
)

// BootstrapAdmin is the reserved credential pair that must always resolve to
// an admin account. Sign-in with this pair self-heals a downgraded profile.
type BootstrapAdmin struct {
	Email    string
	Password string
	FullName string
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider  ports.IdentityProvider
	Federated ports.FederatedProvider // optional, SSO deployments only
	Sessions  ports.SessionStore
	Profiles  ports.ProfileStore
	Roles     ports.RoleMapper // optional, SSO deployments only

	// Provisioner creates the bootstrap admin account outside the HTTP
	// sign-up flow. Optional; required for EnsureBootstrapAdmin.
	Provisioner ports.AccountProvisioner
	Bootstrap   BootstrapAdmin

	Logger *slog.Logger
}

// AuthService orchestrates authentication flows by coordinating the identity
// provider, profile persistence, and session storage.
type AuthService struct {
	provider    ports.IdentityProvider
	federated   ports.FederatedProvider
	sessions    ports.SessionStore
	profiles    ports.ProfileStore
	roles       ports.RoleMapper
	provisioner ports.AccountProvisioner
	bootstrap   BootstrapAdmin
	log         *slog.Logger
}

var (
	// ErrSessionExpired is returned by GetSession for sessions past expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrSSOUnavailable is returned when an SSO flow is used without a
	// configured federated provider.
	ErrSSOUnavailable = errors.New("sso is not configured")
)

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Provider == nil {
		return nil, errors.New("identity provider is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Profiles == nil {
		return nil, errors.New("profile store is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		provider:    opts.Provider,
		federated:   opts.Federated,
		sessions:    opts.Sessions,
		profiles:    opts.Profiles,
		roles:       opts.Roles,
		provisioner: opts.Provisioner,
		bootstrap:   opts.Bootstrap,
		log:         log.With("component", "auth_service"),
	}, nil
}

// MustNewAuthService constructs an AuthService or panics. For wiring code.
func MustNewAuthService(opts AuthServiceOptions) *AuthService {
	s, err := NewAuthService(opts)
	if err != nil {
		panic(err)
	}
	return s
}

// SignInResult contains the result of a successful sign-in.
type SignInResult struct {
	Session domainauth.Session
	Profile *domainauth.Profile // nil when the profile read degraded
}

// SignIn verifies credentials and establishes a session.
//
// A failed sign-in mutates nothing. On success the profile row is upserted
// so that a missing or drifted profile heals on the next sign-in; a profile
// failure degrades the result (nil profile) but does not fail the sign-in.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	identity, err := s.provider.SignIn(ctx, ports.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	role := identity.Role
	if !role.Valid() {
		role = domainauth.RoleStudent
	}
	// The bootstrap pair must always come back as admin, even if the
	// profile row was downgraded out of band.
	if s.isBootstrapEmail(identity.Email) {
		role = domainauth.RoleAdmin
	}

	session := s.newSession(identity, role)
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	profile := s.healProfile(ctx, identity, role)

	return &SignInResult{Session: session, Profile: profile}, nil
}

// SignUp registers a new account and creates its profile row.
//
// Everyone signs up as a student; the bootstrap pair is the only path to an
// admin account. The profile insert is best-effort: a failure is logged and
// heals on the first sign-in.
func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*SignInResult, error) {
	identity, err := s.provider.SignUp(ctx, in)
	if err != nil {
		return nil, err
	}

	role := domainauth.RoleStudent
	if s.isBootstrapEmail(identity.Email) {
		role = domainauth.RoleAdmin
	}

	session := s.newSession(identity, role)
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	profile := s.healProfile(ctx, identity, role)

	return &SignInResult{Session: session, Profile: profile}, nil
}

// SignOut removes a session. Idempotent: signing out an unknown or already
// removed session succeeds.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SignOutEverywhere removes every session belonging to the user behind the
// given session. The session itself not existing is not an error.
func (s *AuthService) SignOutEverywhere(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		// Unknown session: fall back to single delete for idempotence.
		return s.SignOut(ctx, sessionID)
	}
	if err := s.sessions.DeleteForUser(ctx, session.UserID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID and expiry-checks it. Expired
// sessions are cleaned up and reported as ErrSessionExpired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// GetProfile returns the profile for a user id.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domainauth.Profile, error) {
	return s.profiles.GetByID(ctx, userID)
}

// BeginSSOLoginResult contains the result of beginning an SSO login flow.
type BeginSSOLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginSSOLogin initiates a federated login flow.
func (s *AuthService) BeginSSOLogin(ctx context.Context, redirectURL string) (*BeginSSOLoginResult, error) {
	if s.federated == nil {
		return nil, ErrSSOUnavailable
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.federated.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin sso flow: %w", err)
	}

	return &BeginSSOLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteSSOLoginInput groups parameters for completing an SSO login flow.
type CompleteSSOLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteSSOLogin exchanges the authorization code for an identity, maps
// IdP groups to a role, and establishes a session.
func (s *AuthService) CompleteSSOLogin(ctx context.Context, input CompleteSSOLoginInput) (*SignInResult, error) {
	if s.federated == nil {
		return nil, ErrSSOUnavailable
	}
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.federated.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	role := domainauth.RoleStudent
	if s.roles != nil {
		role = s.roles.Map(identity.Groups)
	}

	session := s.newSession(identity, role)
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	profile := s.healProfile(ctx, identity, role)

	return &SignInResult{Session: session, Profile: profile}, nil
}

// EnsureBootstrapAdmin provisions the bootstrap admin account and its admin
// profile. Idempotent; used by the seed-admin command at deployment time.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context) error {
	if s.provisioner == nil {
		return errors.New("account provisioner is not configured")
	}
	if s.bootstrap.Email == "" || s.bootstrap.Password == "" {
		return errors.New("bootstrap admin credentials are not configured")
	}

	identity, err := s.provisioner.EnsureAccount(ctx, ports.SignUpInput{
		Email:    s.bootstrap.Email,
		Password: s.bootstrap.Password,
		FullName: s.bootstrap.FullName,
	}, domainauth.RoleAdmin)
	if err != nil {
		return fmt.Errorf("ensure bootstrap account: %w", err)
	}

	fullName := nonEmptyPtr(identity.FullName)
	if _, upsertErr := s.profiles.Upsert(ctx, identity.UserID, fullName, domainauth.RoleAdmin); upsertErr != nil {
		return fmt.Errorf("ensure bootstrap profile: %w", upsertErr)
	}
	return nil
}

// healProfile upserts the profile row after a successful authentication.
// Failure is logged and degrades to a nil profile; it never fails the
// sign-in itself.
func (s *AuthService) healProfile(ctx context.Context, identity domainauth.Identity, role domainauth.Role) *domainauth.Profile {
	profile, err := s.profiles.Upsert(ctx, identity.UserID, nonEmptyPtr(identity.FullName), role)
	if err != nil {
		s.log.ErrorContext(ctx, "profile upsert failed, continuing without profile",
			"user_id", identity.UserID, "error", err)
		return nil
	}
	return profile
}

func (s *AuthService) newSession(identity domainauth.Identity, role domainauth.Role) domainauth.Session {
	expiresAt := identity.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}
	return domainauth.Session{
		ID:        generateSessionID(),
		UserID:    identity.UserID,
		Email:     identity.Email,
		FullName:  identity.FullName,
		Role:      role,
		ExpiresAt: expiresAt,
	}
}

func (s *AuthService) isBootstrapEmail(email string) bool {
	return s.bootstrap.Email != "" && strings.EqualFold(email, s.bootstrap.Email)
}

func nonEmptyPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	return uuid.New().String()
}
