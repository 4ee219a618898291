package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the application-owned display identity, keyed 1:1 with User.ID.
// Exactly one profile exists per user; the row is created at signup and
// lazily by client-side reconciliation as a fallback.
type Profile struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	FirstName string    `json:"firstName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the fields a profile owner may change. Nil means
// leave unchanged.
type ProfileUpdate struct {
	Username  *string `json:"username"`
	FirstName *string `json:"firstName"`
}
