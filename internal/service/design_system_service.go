package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/dom/design-system-studio/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 20
	maxListLimit     = 50

	// DefaultCreativity seeds the create form; a remix resets to it rather
	// than inheriting the source's value.
	DefaultCreativity = 50
)

type DesignSystemService struct {
	systemRepo repository.DesignSystemRepository
}

func NewDesignSystemService(systemRepo repository.DesignSystemRepository) *DesignSystemService {
	return &DesignSystemService{systemRepo: systemRepo}
}

func (s *DesignSystemService) Get(ctx context.Context, id uuid.UUID) (*domain.DesignSystem, error) {
	system, err := s.systemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDesignSystemNotFound
		}
		return nil, err
	}
	return system, nil
}

func (s *DesignSystemService) ListPublic(ctx context.Context, limit, offset int) ([]*domain.DesignSystem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.systemRepo.ListPublic(ctx, limit, offset)
}

func (s *DesignSystemService) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*domain.DesignSystem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.systemRepo.ListByAuthor(ctx, authorID, limit, offset)
}

// RemixSeed is the pre-filled create form for a remix: the source's tags,
// the default creativity, and an empty name.
type RemixSeed struct {
	SourceID   uuid.UUID `json:"sourceId"`
	SourceName string    `json:"sourceName"`
	Tags       []string  `json:"tags"`
	Creativity int       `json:"creativity"`
}

func (s *DesignSystemService) RemixSeed(ctx context.Context, sourceID, requesterID uuid.UUID) (*RemixSeed, error) {
	source, err := s.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	// Private sources look like missing rows to everyone but their author.
	if !source.IsPublic && source.AuthorID != requesterID {
		return nil, domain.ErrDesignSystemNotFound
	}

	var tags []string
	if len(source.Tags) > 0 {
		if err := json.Unmarshal(source.Tags, &tags); err != nil {
			tags = nil
		}
	}

	return &RemixSeed{
		SourceID:   source.ID,
		SourceName: source.Name,
		Tags:       tags,
		Creativity: DefaultCreativity,
	}, nil
}
