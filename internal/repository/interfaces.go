package repository

import (
	"context"
	"time"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type ProfileRepository interface {
	// CreateIfAbsent inserts the profile unless a row with the same ID
	// already exists. It reports whether a row was inserted. A username
	// collision on a different ID still fails.
	CreateIfAbsent(ctx context.Context, profile *domain.Profile) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)
	Update(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Profile, error)
}

type DesignSystemRepository interface {
	Create(ctx context.Context, system *domain.DesignSystem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DesignSystem, error)
	ListPublic(ctx context.Context, limit, offset int) ([]*domain.DesignSystem, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*domain.DesignSystem, error)
}

type GenerationRepository interface {
	Create(ctx context.Context, record *domain.GenerationRecord) error
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}

type Repositories struct {
	User         UserRepository
	Session      SessionRepository
	Profile      ProfileRepository
	DesignSystem DesignSystemRepository
	Generation   GenerationRepository
}
