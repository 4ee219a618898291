// Package authstate keeps a local view of the current authenticated
// identity consistent with a remote identity provider that can change state
// asynchronously: sign-in elsewhere, token refresh, sign-out.
package authstate

import (
	"context"
	"time"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
)

// Session is the provider-issued token bundle. The provider owns it; the
// store only holds a read-only reference.
type Session struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// User is the provider-issued principal plus its signup metadata.
type User struct {
	ID        uuid.UUID
	Email     string
	Username  string
	FirstName string
}

// SessionChangeHandler receives every session lifecycle transition. A nil
// session (and user) means signed out. Handlers for one subscription are
// invoked in the order the provider emitted the events.
type SessionChangeHandler func(session *Session, user *User)

// IdentityClient is the boundary to the hosted identity provider.
type IdentityClient interface {
	// GetSession returns the current session and its user, or nil/nil when
	// no one is signed in.
	GetSession(ctx context.Context) (*Session, *User, error)

	// OnSessionChange registers a handler for session lifecycle events and
	// returns a func that unregisters it.
	OnSessionChange(handler SessionChangeHandler) (func(), error)

	SignUp(ctx context.Context, email, password, username, firstName string) error
	SignInWithPassword(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error

	// GetCurrentUser re-fetches the authenticated user, metadata included.
	GetCurrentUser(ctx context.Context) (*User, error)
}

// ProfileStore is the keyed CRUD boundary for profile records. Find must
// signal a missing row with domain.ErrProfileNotFound and Insert must
// signal a duplicate key with domain.ErrProfileExists, so callers can tell
// the recoverable kinds from real failures.
type ProfileStore interface {
	Find(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	Insert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.ProfileUpdate) (*domain.Profile, error)
}
