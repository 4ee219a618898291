package authstate

import (
	"context"
	"sync"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the published view of the current authenticated identity.
// User is non-nil exactly when Session is non-nil; Profile may lag behind
// User while reconciliation is in flight, and a nil Profile means "not yet
// available", never "error".
type State struct {
	User    *User
	Profile *domain.Profile
	Session *Session
	Loading bool
}

// Store is the single source of truth for session, user, and profile. It
// is constructed explicitly, started once, and closed when its owner shuts
// down; nothing about it is ambient.
//
// Every session replacement bumps an epoch counter. Results of work started
// under an older epoch (reconciliations, profile updates) are discarded
// instead of being applied to state that has since moved on.
type Store struct {
	identity   IdentityClient
	profiles   ProfileStore
	reconciler *Reconciler
	logger     *zap.Logger

	mu          sync.Mutex
	user        *User
	profile     *domain.Profile
	session     *Session
	epoch       uint64
	inflight    int
	unsubscribe func()
	closed      bool
}

func NewStore(identity IdentityClient, profiles ProfileStore, reconciler *Reconciler, logger *zap.Logger) *Store {
	return &Store{
		identity:   identity,
		profiles:   profiles,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Start performs the blocking initial session fetch, reconciles the profile
// if a session exists, and subscribes to provider session events. State is
// fully seeded when Start returns.
func (s *Store) Start(ctx context.Context) error {
	s.beginOp()

	session, user, err := s.identity.GetSession(ctx)
	if err != nil {
		s.endOp()
		return err
	}

	epoch := s.replaceSession(session, user)
	if user != nil {
		s.applyReconciliation(ctx, user.ID, epoch)
	}
	s.endOp()

	unsubscribe, err := s.identity.OnSessionChange(s.handleSessionChange)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		// Closed while subscribing; release immediately.
		s.mu.Unlock()
		unsubscribe()
		return nil
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	return nil
}

// Close unregisters the session subscription. Events arriving after Close
// are no longer applied. Idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.closed = true
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		User:    s.user,
		Profile: s.profile,
		Session: s.session,
		Loading: s.inflight > 0,
	}
}

// SignUp requests account creation with username and first name attached as
// signup metadata for later profile derivation. The profile row itself is
// the provider's (or the reconciler's) job.
func (s *Store) SignUp(ctx context.Context, email, password, username, firstName string) error {
	s.beginOp()
	defer s.endOp()
	return s.identity.SignUp(ctx, email, password, username, firstName)
}

// SignIn requests a session for existing credentials. The returned error
// reflects only the immediate credential check; user and profile are
// populated asynchronously by the session subscription.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	s.beginOp()
	defer s.endOp()
	return s.identity.SignInWithPassword(ctx, email, password)
}

// SignOut invalidates the current session with the provider. The triggered
// session event clears user, session, and profile in one update.
func (s *Store) SignOut(ctx context.Context) error {
	s.beginOp()
	defer s.endOp()
	return s.identity.SignOut(ctx)
}

// UpdateProfile persists the given fields to the current user's profile and
// applies the store's result locally. Fails with domain.ErrNotAuthenticated
// and performs no write when no user is signed in. A result that arrives
// after the session has changed is discarded.
func (s *Store) UpdateProfile(ctx context.Context, fields domain.ProfileUpdate) error {
	s.mu.Lock()
	user := s.user
	epoch := s.epoch
	s.mu.Unlock()

	if user == nil {
		return domain.ErrNotAuthenticated
	}

	s.beginOp()
	defer s.endOp()

	updated, err := s.profiles.Update(ctx, user.ID, fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.user == nil {
		s.logger.Debug("discarding stale profile update result",
			zap.String("user_id", user.ID.String()))
		return nil
	}
	if updated != nil {
		s.profile = updated
	} else {
		s.profile = mergeProfile(s.profile, fields)
	}
	return nil
}

// handleSessionChange is invoked by the identity client for every session
// lifecycle event, in emission order. Each event replaces session and user
// in full; a sign-in triggers reconciliation under the new epoch.
func (s *Store) handleSessionChange(session *Session, user *User) {
	epoch := s.replaceSession(session, user)
	if user == nil {
		return
	}

	s.beginOp()
	s.applyReconciliation(context.Background(), user.ID, epoch)
	s.endOp()
}

// replaceSession swaps session and user atomically and bumps the epoch.
// The invariant "user non-nil iff session non-nil" is enforced here: a
// half-populated event degrades to signed-out. Clearing the session clears
// the profile in the same update.
func (s *Store) replaceSession(session *Session, user *User) uint64 {
	if session == nil || user == nil {
		session, user = nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	s.user = user
	s.epoch++
	if session == nil {
		s.profile = nil
	}
	return s.epoch
}

// applyReconciliation runs the reconciler and applies its result only if
// the session has not been replaced in the meantime.
func (s *Store) applyReconciliation(ctx context.Context, userID uuid.UUID, epoch uint64) {
	profile := s.reconciler.Reconcile(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.user == nil {
		s.logger.Debug("discarding stale reconciliation result",
			zap.String("user_id", userID.String()))
		return
	}
	s.profile = profile
}

func (s *Store) beginOp() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *Store) endOp() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

func mergeProfile(current *domain.Profile, fields domain.ProfileUpdate) *domain.Profile {
	if current == nil {
		return nil
	}
	merged := *current
	if fields.Username != nil {
		merged.Username = *fields.Username
	}
	if fields.FirstName != nil {
		merged.FirstName = *fields.FirstName
	}
	return &merged
}
