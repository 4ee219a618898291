package postgres

import (
	"context"
	"time"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type generationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) *generationRepository {
	return &generationRepository{db: db}
}

func (r *generationRepository) Create(ctx context.Context, record *domain.GenerationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *generationRepository) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.GenerationRecord{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
