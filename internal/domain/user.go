package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity-provider principal. Username and FirstName are the
// signup metadata attached at registration; display identity lives on the
// Profile row, which is derived from this metadata.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Username     string    `json:"username" gorm:"not null"`
	FirstName    string    `json:"firstName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSession backs a refresh token. The raw token is "<id>.<secret>"; only
// the bcrypt hash of the secret is stored.
type UserSession struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	RefreshTokenHash string    `json:"-" gorm:"not null"`
	ExpiresAt        time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its expiry.
func (s *UserSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
