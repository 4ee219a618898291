package websocket

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventTokenRefreshed EventType = "token_refreshed"
	EventUserUpdated    EventType = "user_updated"
)

// SessionEvent describes one session lifecycle transition for a user.
// Events for a given subscriber are delivered in publish order; Seq is
// monotonic across the hub and lets consumers detect the relative age of
// two events.
type SessionEvent struct {
	Type      EventType    `json:"type"`
	UserID    uuid.UUID    `json:"userId"`
	Session   *SessionInfo `json:"session,omitempty"`
	Seq       uint64       `json:"seq"`
	EmittedAt time.Time    `json:"emittedAt"`
}

// SessionInfo is the provider-side description of a session. Token values
// never travel through the hub; clients pair this with the credentials they
// obtained over the direct call path.
type SessionInfo struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	ExpiresAt time.Time `json:"expiresAt"`
}
