package postgres

import (
	"context"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type designSystemRepository struct {
	db *gorm.DB
}

func NewDesignSystemRepository(db *gorm.DB) *designSystemRepository {
	return &designSystemRepository{db: db}
}

func (r *designSystemRepository) Create(ctx context.Context, system *domain.DesignSystem) error {
	return r.db.WithContext(ctx).Create(system).Error
}

func (r *designSystemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DesignSystem, error) {
	var system domain.DesignSystem
	err := r.db.WithContext(ctx).First(&system, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &system, nil
}

func (r *designSystemRepository) ListPublic(ctx context.Context, limit, offset int) ([]*domain.DesignSystem, error) {
	var systems []*domain.DesignSystem
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&systems).Error
	if err != nil {
		return nil, err
	}
	return systems, nil
}

func (r *designSystemRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*domain.DesignSystem, error) {
	var systems []*domain.DesignSystem
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&systems).Error
	if err != nil {
		return nil, err
	}
	return systems, nil
}
