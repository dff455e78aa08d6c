package service

import (
	"context"
	"log/slog"
	"sync"

	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/ports"
)

// sessionResolver is the slice of AuthService the state store needs.
type sessionResolver interface {
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	SignOut(ctx context.Context, sessionID string) error
}

// AuthStateStoreOptions groups dependencies for AuthStateStore.
type AuthStateStoreOptions struct {
	Auth     sessionResolver
	Profiles ports.ProfileStore
	Logger   *slog.Logger
}

// AuthStateStore is an explicit, constructed holder of the observable
// authentication state. It is the single writer of AuthState; consumers
// read Current or subscribe for pushes.
//
// Every identity change (sign-in, sign-out) bumps a generation counter.
// An in-flight profile fetch commits its result only if its generation is
// still current, so a sign-out racing a slow profile read always ends in
// the signed-out state.
type AuthStateStore struct {
	auth     sessionResolver
	profiles ports.ProfileStore
	log      *slog.Logger

	mu        sync.Mutex
	state     domainauth.AuthState
	sessionID string
	gen       uint64
	subs      map[int]chan domainauth.AuthState
	nextSubID int
}

// NewAuthStateStore constructs a store in the loading state. Call Initialize
// to resolve an existing session (or its absence) and settle the state.
func NewAuthStateStore(opts AuthStateStoreOptions) *AuthStateStore {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &AuthStateStore{
		auth:     opts.Auth,
		profiles: opts.Profiles,
		log:      log.With("component", "auth_state"),
		state:    domainauth.AuthState{Loading: true},
		subs:     make(map[int]chan domainauth.AuthState),
	}
}

// Current returns the current auth state.
func (s *AuthStateStore) Current() domainauth.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers for state change notifications. The returned cancel
// function releases the subscription; it is safe to call more than once.
// Slow subscribers drop notifications rather than block the writer.
func (s *AuthStateStore) Subscribe() (<-chan domainauth.AuthState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan domainauth.AuthState, 16)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Initialize resolves the stored session (if any) into a settled state.
// With no session the store settles directly into the signed-out state.
func (s *AuthStateStore) Initialize(ctx context.Context, sessionID string) {
	if sessionID == "" {
		s.mu.Lock()
		s.gen++
		s.sessionID = ""
		s.setStateLocked(domainauth.SignedOut())
		s.mu.Unlock()
		return
	}

	session, err := s.auth.GetSession(ctx, sessionID)
	if err != nil {
		s.log.InfoContext(ctx, "session did not resolve, starting signed out", "error", err)
		s.mu.Lock()
		s.gen++
		s.sessionID = ""
		s.setStateLocked(domainauth.SignedOut())
		s.mu.Unlock()
		return
	}

	s.SetSession(ctx, *session, sessionID)
}

// SetSession installs a new identity after a successful sign-in and kicks
// off the profile resolution. The state stays loading until the profile
// fetch settles; a nil-profile degradation still settles.
func (s *AuthStateStore) SetSession(ctx context.Context, session domainauth.Session, sessionID string) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.sessionID = sessionID
	s.setStateLocked(domainauth.AuthState{
		User: &domainauth.User{
			ID:       session.UserID,
			Email:    session.Email,
			FullName: session.FullName,
		},
		Session: &session,
		Loading: true,
	})
	s.mu.Unlock()

	go s.resolveProfile(ctx, session.UserID, gen)
}

// SignOut clears the state immediately and deletes the session. Idempotent:
// signing out an already signed-out store is a no-op state-wise.
func (s *AuthStateStore) SignOut(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	sessionID := s.sessionID
	s.sessionID = ""
	s.setStateLocked(domainauth.SignedOut())
	s.mu.Unlock()

	if sessionID == "" {
		return
	}
	if err := s.auth.SignOut(ctx, sessionID); err != nil {
		s.log.ErrorContext(ctx, "session delete failed during sign-out", "error", err)
	}
}

// resolveProfile fetches the profile for the given generation and commits
// the result only if that generation is still current.
func (s *AuthStateStore) resolveProfile(ctx context.Context, userID string, gen uint64) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		// Degrade: signed in without profile, never admin.
		s.log.ErrorContext(ctx, "profile fetch failed, degrading to nil profile",
			"user_id", userID, "error", err)
		profile = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// Identity changed while the fetch was in flight. Discard.
		return
	}

	next := s.state
	next.Profile = profile
	next.IsAdmin = profile != nil && profile.Role == domainauth.RoleAdmin
	next.Loading = false
	s.setStateLocked(next)
}

// setStateLocked replaces the state and notifies subscribers. Callers must
// hold s.mu.
func (s *AuthStateStore) setStateLocked(next domainauth.AuthState) {
	s.state = next
	for _, ch := range s.subs {
		select {
		case ch <- next:
		default:
		}
	}
}
