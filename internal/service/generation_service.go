package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dom/design-system-studio/internal/domain"
	"github.com/dom/design-system-studio/internal/metrics"
	"github.com/dom/design-system-studio/internal/repository"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	minTags = 1
	maxTags = 5
)

type GenerationService struct {
	systemRepo     repository.DesignSystemRepository
	generationRepo repository.GenerationRepository
	profiles       *ProfileService
	generator      Generator
	monthlyLimit   int
	collector      *metrics.Collector
	logger         *zap.Logger
}

func NewGenerationService(
	systemRepo repository.DesignSystemRepository,
	generationRepo repository.GenerationRepository,
	profiles *ProfileService,
	generator Generator,
	monthlyLimit int,
	collector *metrics.Collector,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		systemRepo:     systemRepo,
		generationRepo: generationRepo,
		profiles:       profiles,
		generator:      generator,
		monthlyLimit:   monthlyLimit,
		collector:      collector,
		logger:         logger,
	}
}

type GenerateInput struct {
	Name            string     `json:"name"`
	Tags            []string   `json:"tags"`
	Prompt          string     `json:"prompt"`
	CreativityScale int        `json:"creativityScale"`
	RemixOf         *uuid.UUID `json:"remixOf"`
	IsPublic        bool       `json:"isPublic"`
}

func (in GenerateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Tags, validation.Required, validation.By(validateTags)),
		validation.Field(&in.CreativityScale, validation.Min(0), validation.Max(100)),
		validation.Field(&in.Prompt, validation.Length(0, 2000)),
	)
}

func validateTags(value interface{}) error {
	tags, ok := value.([]string)
	if !ok {
		return errors.New("must be a list of tags")
	}
	if len(tags) < minTags || len(tags) > maxTags {
		return fmt.Errorf("must contain between %d and %d tags", minTags, maxTags)
	}
	for _, tag := range tags {
		if tag == "" || len(tag) > 40 {
			return errors.New("tags must be 1-40 characters")
		}
	}
	return nil
}

// Remaining reports how many generations the user has left this calendar
// month. The counter is derived from usage records, never stored.
func (s *GenerationService) Remaining(ctx context.Context, userID uuid.UUID) (int, error) {
	used, err := s.generationRepo.CountSince(ctx, userID, startOfMonth(time.Now()))
	if err != nil {
		return 0, err
	}

	remaining := s.monthlyLimit - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Generate runs one generation for the user: quota check, generator call,
// persistence of the design system plus its usage record.
func (s *GenerationService) Generate(ctx context.Context, userID uuid.UUID, input GenerateInput) (*domain.DesignSystem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	remaining, err := s.Remaining(ctx, userID)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		s.collector.RecordGenerationDenied()
		return nil, domain.ErrGenerationLimit
	}

	if input.RemixOf != nil {
		source, err := s.systemRepo.GetByID(ctx, *input.RemixOf)
		if err != nil {
			return nil, domain.ErrDesignSystemNotFound
		}
		// Same visibility rule as the detail endpoint: a private source is a
		// missing row to everyone but its author.
		if !source.IsPublic && source.AuthorID != userID {
			return nil, domain.ErrDesignSystemNotFound
		}
	}

	// Guarantees a username to denormalize even for users whose profile row
	// was never created.
	profile, _, err := s.profiles.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	doc, err := s.generator.Generate(ctx, GenerateRequest{
		Name:            input.Name,
		Tags:            input.Tags,
		CreativityScale: input.CreativityScale,
	})
	if err != nil {
		s.logger.Error("generator call failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, domain.ErrGenerationFailed
	}

	tokensJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	tagsJSON, err := json.Marshal(input.Tags)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	system := &domain.DesignSystem{
		ID:              uuid.New(),
		Name:            input.Name,
		AuthorID:        userID,
		AuthorUsername:  profile.Username,
		Tags:            datatypes.JSON(tagsJSON),
		Prompt:          input.Prompt,
		CreativityScale: input.CreativityScale,
		Tokens:          datatypes.JSON(tokensJSON),
		RemixedFrom:     input.RemixOf,
		IsPublic:        input.IsPublic,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.systemRepo.Create(ctx, system); err != nil {
		return nil, err
	}

	record := &domain.GenerationRecord{
		ID:             uuid.New(),
		UserID:         userID,
		DesignSystemID: system.ID,
		CreatedAt:      now,
	}
	if err := s.generationRepo.Create(ctx, record); err != nil {
		// The system row exists; losing the usage record only under-counts
		// quota, so log rather than fail the generation.
		s.logger.Warn("failed to record generation usage",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}

	s.collector.RecordGeneration()
	return system, nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
