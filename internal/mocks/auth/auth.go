package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider  = (*MockIdentityProvider)(nil)
	_ ports.FederatedProvider = (*MockFederatedProvider)(nil)
	_ ports.SessionStore      = (*MemorySessionStore)(nil)
	_ ports.RoleMapper        = (*StaticRoleMapper)(nil)
)

// MockIdentityProvider simulates a credential backend for tests.
type MockIdentityProvider struct {
	SignInFunc func(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error)
	SignUpFunc func(ctx context.Context, in ports.SignUpInput) (domainauth.Identity, error)

	// DefaultIdentity is returned when no func override is set.
	DefaultIdentity domainauth.Identity
}

// NewMockIdentityProvider creates a MockIdentityProvider with sensible defaults.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultIdentity: domainauth.Identity{
			UserID:    "mock-user-1",
			Email:     "mock.user@example.edu",
			FullName:  "Mock User",
			Role:      domainauth.RoleStudent,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, creds)
	}
	id := m.DefaultIdentity
	id.ExpiresAt = time.Now().Add(time.Hour)
	return id, nil
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, in ports.SignUpInput) (domainauth.Identity, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, in)
	}
	id := m.DefaultIdentity
	if in.Email != "" {
		id.Email = in.Email
	}
	if in.FullName != "" {
		id.FullName = in.FullName
	}
	id.ExpiresAt = time.Now().Add(time.Hour)
	return id, nil
}

// MockFederatedProvider simulates a university SSO IdP with deterministic
// state/nonce handling.
type MockFederatedProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL         string
	StatePrefix     string
	NoncePrefix     string
	DefaultIdentity domainauth.Identity

	callCount int
}

// NewMockFederatedProvider creates a MockFederatedProvider with sensible defaults.
func NewMockFederatedProvider() *MockFederatedProvider {
	return &MockFederatedProvider{
		AuthURL:     "https://mock-sso/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultIdentity: domainauth.Identity{
			UserID:    "mock-sso-user-1",
			Email:     "mock.sso@example.edu",
			FullName:  "Mock SSO User",
			Groups:    []string{"students"},
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockFederatedProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-sso/auth"
	}

	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	state := fmt.Sprintf("%s-%d", statePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", noncePrefix, m.callCount)

	return authURL, state, nonce, nil
}

func (m *MockFederatedProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	id := m.DefaultIdentity
	if id.UserID == "" {
		id = domainauth.Identity{
			UserID:   "mock-sso-user-1",
			Email:    "mock.sso@example.edu",
			FullName: "Mock SSO User",
			Groups:   []string{"students"},
		}
	}
	id.ExpiresAt = time.Now().Add(time.Hour)

	return id, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) DeleteForUser(_ context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sess := range m.sessions {
		if sess.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

// Len reports the number of stored sessions. Test-only helper.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// StaticRoleMapper maps groups by simple string membership rules.
type StaticRoleMapper struct {
	AdminGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	return domainauth.RoleStudent
}
