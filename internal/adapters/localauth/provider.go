package localauth

// Package localauth implements the credential-backed IdentityProvider against
// the users table, with bcrypt password verification.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/studyzone/studyzone-api/internal/data"
	"github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/domain/model"
	"github.com/studyzone/studyzone-api/internal/ports"
)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords
// alike, so callers cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the subset of the user repository the provider needs.
type UserStore interface {
	Create(ctx context.Context, req *model.CreateUserRequest, passwordHash string) (*model.UserAccount, error)
	GetByEmail(ctx context.Context, email string) (*model.UserAccount, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// Options configures the local auth provider.
type Options struct {
	Users           UserStore
	SessionDuration time.Duration // default 8h when zero
	BcryptCost      int           // default bcrypt.DefaultCost when zero
}

// Provider verifies credentials against stored bcrypt hashes.
type Provider struct {
	users           UserStore
	sessionDuration time.Duration
	bcryptCost      int
}

// NewProvider constructs a Provider from Options.
func NewProvider(opts Options) (*Provider, error) {
	if opts.Users == nil {
		return nil, errors.New("local auth: Users store is required")
	}
	if opts.SessionDuration == 0 {
		opts.SessionDuration = 8 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Provider{
		users:           opts.Users,
		sessionDuration: opts.SessionDuration,
		bcryptCost:      opts.BcryptCost,
	}, nil
}

// MustNewProvider is like NewProvider but panics on error. Intended for wiring in main.
func MustNewProvider(opts Options) *Provider {
	p, err := NewProvider(opts)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Provider) SignIn(ctx context.Context, creds ports.Credentials) (auth.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return auth.Identity{}, ErrInvalidCredentials
	}

	account, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			// Burn a comparison anyway to keep timing flat across branches.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(creds.Password))
			return auth.Identity{}, ErrInvalidCredentials
		}
		return auth.Identity{}, fmt.Errorf("look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)); err != nil {
		return auth.Identity{}, ErrInvalidCredentials
	}

	return p.identityFor(account), nil
}

func (p *Provider) SignUp(ctx context.Context, in ports.SignUpInput) (auth.Identity, error) {
	req := &model.CreateUserRequest{
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
		Role:     auth.RoleStudent,
	}
	if err := req.Validate(); err != nil {
		return auth.Identity{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), p.bcryptCost)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := p.users.Create(ctx, req, string(hash))
	if err != nil {
		return auth.Identity{}, err
	}
	return p.identityFor(account), nil
}

// EnsureAccount creates the account if missing and returns its identity.
// Existing accounts are returned untouched; the password is not rewritten.
func (p *Provider) EnsureAccount(
	ctx context.Context,
	in ports.SignUpInput,
	role auth.Role,
) (auth.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	account, err := p.users.GetByEmail(ctx, email)
	if err == nil {
		return p.identityFor(account), nil
	}
	if !errors.Is(err, data.ErrUserNotFound) {
		return auth.Identity{}, fmt.Errorf("look up account: %w", err)
	}

	hash, hashErr := bcrypt.GenerateFromPassword([]byte(in.Password), p.bcryptCost)
	if hashErr != nil {
		return auth.Identity{}, fmt.Errorf("hash password: %w", hashErr)
	}

	account, err = p.users.Create(ctx, &model.CreateUserRequest{
		Email:    email,
		Password: in.Password,
		FullName: in.FullName,
		Role:     role,
	}, string(hash))
	if err != nil {
		// Lost a race with a concurrent create; read back the winner.
		if errors.Is(err, data.ErrEmailExists) {
			account, err = p.users.GetByEmail(ctx, email)
			if err != nil {
				return auth.Identity{}, fmt.Errorf("look up account after race: %w", err)
			}
			return p.identityFor(account), nil
		}
		return auth.Identity{}, err
	}
	return p.identityFor(account), nil
}

func (p *Provider) identityFor(account *model.UserAccount) auth.Identity {
	return auth.Identity{
		UserID:    account.ID,
		Email:     account.Email,
		FullName:  account.FullName,
		Role:      account.Role,
		ExpiresAt: time.Now().Add(p.sessionDuration),
	}
}

// dummyHash is a valid bcrypt hash of an unguessable value, used to equalize
// timing on the unknown-email path.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
