package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/WayneDavenport/Mediaq-sub000/internal/api/middleware"
	"github.com/WayneDavenport/Mediaq-sub000/internal/controllers"
)

// StatusHandler handles status requests
type StatusHandler struct {
	engine *controllers.Engine
	logger zerolog.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(engine *controllers.Engine, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		engine: engine,
		logger: logger,
	}
}

// Handle reports item, queue and lock counts for the owner
func (h *StatusHandler) Handle(c *fiber.Ctx) error {
	stats, err := h.engine.Status(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	return RespondSuccess(c, stats)
}
