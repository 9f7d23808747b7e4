package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/WayneDavenport/Mediaq-sub000/internal/api/handlers"
	"github.com/WayneDavenport/Mediaq-sub000/internal/api/middleware"
	"github.com/WayneDavenport/Mediaq-sub000/internal/config"
	"github.com/WayneDavenport/Mediaq-sub000/internal/controllers"
)

// Server represents the HTTP server
type Server struct {
	app    *fiber.App
	addr   string
	engine *controllers.Engine
	logger zerolog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, engine *controllers.Engine, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	s := &Server{
		addr:   ":" + cfg.ServerPort,
		engine: engine,
		logger: logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "mediaq",
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return handlers.RespondError(c, code, handlers.ErrCodeInternalServer, err.Error(), "")
		},
	})
	s.app.Use(middleware.Logging(logger))
	s.setupRoutes(gatherer)

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	// Health check and metrics
	s.app.Get("/health", handlers.NewHealthHandler(s.logger).Handle)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := s.app.Group("/api", middleware.RequireOwner())

	api.Get("/status", handlers.NewStatusHandler(s.engine, s.logger).Handle)

	items := handlers.NewItemsHandler(s.engine, s.logger)
	api.Post("/items", items.Create)
	api.Get("/items", items.List)
	api.Get("/items/:id", items.Get)
	api.Post("/items/:id/progress", items.Progress)
	api.Post("/items/:id/uncomplete", items.Uncomplete)
	api.Post("/items/:id/reorder", items.Reorder)

	locks := handlers.NewLocksHandler(s.engine, s.logger)
	api.Post("/locks", locks.Create)
	api.Get("/locks", locks.List)
	api.Post("/locks/:id/reset", locks.Reset)
	api.Delete("/locks/:id", locks.Delete)

	settings := handlers.NewSettingsHandler(s.engine, s.logger)
	api.Get("/settings", settings.Get)
	api.Put("/settings", settings.Update)
}

// App exposes the fiber application, mainly for in-process requests in tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info().Str("port", s.addr).Msg("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(s.addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("Shutting down HTTP server")
	return s.app.ShutdownWithTimeout(10 * time.Second)
}
