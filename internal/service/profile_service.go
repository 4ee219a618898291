package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/dom/design-system-studio/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProfileService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	logger      *zap.Logger
}

func NewProfileService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// EnsureProfile is the server-side half of reconciliation: insert-or-return
// the profile for the given user, deriving display fields from the user's
// signup metadata. The insert is atomic on the user id, so concurrent calls
// cannot produce two rows.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, domain.ErrNotAuthenticated
		}
		return nil, false, err
	}

	now := time.Now()
	profile := &domain.Profile{
		ID:        user.ID,
		Username:  DeriveUsername(user),
		FirstName: user.FirstName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.profileRepo.CreateIfAbsent(ctx, profile)
	if err != nil {
		// Most likely a username collision with another user; the caller
		// treats the profile as absent.
		s.logger.Warn("profile insert failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, false, err
	}

	if created {
		return profile, true, nil
	}

	existing, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Update persists the given fields for the user's own profile.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, update domain.ProfileUpdate) (*domain.Profile, error) {
	if _, err := s.profileRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	if update.Username != nil {
		taken, err := s.profileRepo.GetByUsername(ctx, *update.Username)
		if err == nil && taken != nil && taken.ID != userID {
			return nil, domain.ErrUsernameTaken
		}
	}

	return s.profileRepo.Update(ctx, userID, update)
}

// DeriveUsername picks a default username from signup metadata: the chosen
// username, else the local part of the email, else "user".
func DeriveUsername(user *domain.User) string {
	if user.Username != "" {
		return user.Username
	}
	if local, _, found := strings.Cut(user.Email, "@"); found && local != "" {
		return local
	}
	return "user"
}
