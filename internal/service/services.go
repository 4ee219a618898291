package service

import (
	"github.com/dom/design-system-studio/internal/config"
	"github.com/dom/design-system-studio/internal/metrics"
	"github.com/dom/design-system-studio/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	Auth         *AuthService
	Profile      *ProfileService
	DesignSystem *DesignSystemService
	Generation   *GenerationService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, collector *metrics.Collector, logger *zap.Logger) *Services {
	profile := NewProfileService(repos.User, repos.Profile, logger.Named("profile"))

	return &Services{
		Auth:         NewAuthService(repos.User, repos.Session, repos.Profile, cfg, logger.Named("auth")),
		Profile:      profile,
		DesignSystem: NewDesignSystemService(repos.DesignSystem),
		Generation: NewGenerationService(
			repos.DesignSystem,
			repos.Generation,
			profile,
			NewMockGenerator(cfg.GeneratorLatency),
			cfg.MonthlyGenerationLimit,
			collector,
			logger.Named("generation"),
		),
	}
}
