package api

import (
	"net/http"

	"github.com/dom/design-system-studio/internal/api/handlers"
	"github.com/dom/design-system-studio/internal/api/middleware"
	"github.com/dom/design-system-studio/internal/config"
	"github.com/dom/design-system-studio/internal/metrics"
	"github.com/dom/design-system-studio/internal/service"
	"github.com/dom/design-system-studio/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, collector *metrics.Collector, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)
	r.Use(collector.Middleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, hub, collector)
	profileHandler := handlers.NewProfileHandler(services.Profile)
	systemHandler := handlers.NewDesignSystemHandler(services.DesignSystem, services.Auth)
	generateHandler := handlers.NewGenerateHandler(services.Generation)
	eventsHandler := handlers.NewEventsHandler(hub, services.Auth, logger.Named("events"))

	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Credential endpoints are rate limited per client IP
			r.Group(func(r chi.Router) {
				r.Use(authLimiter.Middleware)
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/refresh", authHandler.Refresh)
			})

			// Session event stream (token in query)
			r.Get("/events", eventsHandler.Handle)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth, logger))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Profile routes
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/{id}", profileHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth, logger))
				r.Post("/", profileHandler.Ensure)
				r.Patch("/me", profileHandler.Update)
			})
		})

		// Browse routes (public)
		r.Route("/design-systems", func(r chi.Router) {
			r.Get("/", systemHandler.List)
			r.Get("/{id}", systemHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth, logger))
				r.Get("/mine", systemHandler.ListMine)
				r.Get("/{id}/remix", systemHandler.RemixSeed)
			})
		})

		// Generation routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth, logger))
			r.Post("/generate", generateHandler.Generate)
			r.Get("/generate/remaining", generateHandler.Remaining)
		})
	})

	return r
}
