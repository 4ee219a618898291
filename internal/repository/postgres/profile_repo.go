package postgres

import (
	"context"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *profileRepository {
	return &profileRepository{db: db}
}

// CreateIfAbsent resolves the fetch-or-create race at the storage boundary:
// two concurrent reconciliations for the same new user both land here, and
// ON CONFLICT (id) DO NOTHING lets exactly one row win without an error.
func (r *profileRepository) CreateIfAbsent(ctx context.Context, profile *domain.Profile) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(profile)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).First(&profile, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.Profile, error) {
	fields := map[string]interface{}{}
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.FirstName != nil {
		fields["first_name"] = *update.FirstName
	}

	if len(fields) > 0 {
		err := r.db.WithContext(ctx).
			Model(&domain.Profile{}).
			Where("id = ?", id).
			Updates(fields).Error
		if err != nil {
			return nil, err
		}
	}

	return r.GetByID(ctx, id)
}
