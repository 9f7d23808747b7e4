package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/WayneDavenport/Mediaq-sub000/internal/api/middleware"
	"github.com/WayneDavenport/Mediaq-sub000/internal/controllers"
)

// SettingsHandler serves per-owner settings
type SettingsHandler struct {
	engine *controllers.Engine
	logger zerolog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(engine *controllers.Engine, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{engine: engine, logger: logger}
}

type settingsRequest struct {
	PagesPerInterval float64 `json:"pages_per_interval"`
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.engine.GetSettings(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	return RespondSuccess(c, settings)
}

// Update changes the reading speed used for page/time conversions
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return RespondBadRequest(c, "Invalid request format", err.Error())
	}

	settings, err := h.engine.UpdateSettings(c.UserContext(), middleware.OwnerID(c), req.PagesPerInterval)
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	return RespondSuccess(c, settings)
}
