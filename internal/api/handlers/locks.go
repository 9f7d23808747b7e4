package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/WayneDavenport/Mediaq-sub000/internal/api/middleware"
	"github.com/WayneDavenport/Mediaq-sub000/internal/controllers"
)

// LocksHandler serves lock endpoints
type LocksHandler struct {
	engine *controllers.Engine
	logger zerolog.Logger
}

// NewLocksHandler creates a new locks handler
func NewLocksHandler(engine *controllers.Engine, logger zerolog.Logger) *LocksHandler {
	return &LocksHandler{engine: engine, logger: logger}
}

// Create validates and stores a lock, evaluating it right away
func (h *LocksHandler) Create(c *fiber.Ctx) error {
	var req controllers.LockRequest
	if err := c.BodyParser(&req); err != nil {
		return RespondBadRequest(c, "Invalid request format", err.Error())
	}

	result, err := h.engine.CreateLock(c.UserContext(), middleware.OwnerID(c), req)
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	return RespondCreated(c, result)
}

func (h *LocksHandler) List(c *fiber.Ctx) error {
	locks, err := h.engine.ListLocks(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	return RespondSuccess(c, locks)
}

func (h *LocksHandler) Reset(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}

	lock, err := h.engine.ResetLock(c.UserContext(), middleware.OwnerID(c), id)
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	return RespondSuccess(c, lock)
}

func (h *LocksHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}

	if err := h.engine.DeleteLock(c.UserContext(), middleware.OwnerID(c), id); err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
