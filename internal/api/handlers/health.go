package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	logger zerolog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// Handle handles the health check endpoint
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
