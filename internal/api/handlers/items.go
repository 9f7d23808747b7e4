package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/WayneDavenport/Mediaq-sub000/internal/api/middleware"
	"github.com/WayneDavenport/Mediaq-sub000/internal/controllers"
	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
	"github.com/WayneDavenport/Mediaq-sub000/internal/models"
)

// ItemsHandler serves item, progress and queue endpoints
type ItemsHandler struct {
	engine *controllers.Engine
	logger zerolog.Logger
}

// NewItemsHandler creates a new items handler
func NewItemsHandler(engine *controllers.Engine, logger zerolog.Logger) *ItemsHandler {
	return &ItemsHandler{engine: engine, logger: logger}
}

// progressRequest is the body of POST /api/items/:id/progress
type progressRequest struct {
	Value        float64     `json:"value"`
	Unit         models.Unit `json:"unit"`
	MarkComplete bool        `json:"mark_complete"`
}

// reorderRequest accepts "top", "bottom" or a 1-based index, quoted or not
type reorderRequest struct {
	Position json.RawMessage `json:"position"`
}

// Create adds an item to the bottom of the owner's queue
func (h *ItemsHandler) Create(c *fiber.Ctx) error {
	var req controllers.ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return RespondBadRequest(c, "Invalid request format", err.Error())
	}

	view, err := h.engine.CreateItem(c.UserContext(), middleware.OwnerID(c), req)
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	return RespondCreated(c, view)
}

// List returns the active queue in order
func (h *ItemsHandler) List(c *fiber.Ctx) error {
	queue, err := h.engine.ListQueue(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	setVersion(c, queue.Version)
	return RespondSuccess(c, queue)
}

// Get returns one item with its progress
func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}

	view, err := h.engine.GetItem(c.UserContext(), middleware.OwnerID(c), id)
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	return RespondSuccess(c, view)
}

// Progress records progress and reports the locks it unlocked
func (h *ItemsHandler) Progress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}

	var req progressRequest
	if err := c.BodyParser(&req); err != nil {
		return RespondBadRequest(c, "Invalid request format", err.Error())
	}

	result, err := h.engine.RecordProgress(c.UserContext(), middleware.OwnerID(c), id, controllers.ProgressInput{
		Value:        req.Value,
		Unit:         req.Unit,
		MarkComplete: req.MarkComplete,
	})
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}

	if len(result.AffectedLocks) > 0 {
		h.logger.Info().
			Str("owner_id", middleware.OwnerID(c)).
			Uint("item_id", id).
			Int("unlocked", len(result.AffectedLocks)).
			Msg("Progress unlocked items")
	}
	return RespondSuccess(c, result)
}

// Uncomplete returns a completed item to the bottom of the queue
func (h *ItemsHandler) Uncomplete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}

	view, err := h.engine.UncompleteItem(c.UserContext(), middleware.OwnerID(c), id)
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	return RespondSuccess(c, view)
}

// Reorder moves an item within the queue. An If-Match header carrying the
// version from a previous ETag makes the move conditional.
func (h *ItemsHandler) Reorder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}

	var req reorderRequest
	if err := c.BodyParser(&req); err != nil {
		return RespondBadRequest(c, "Invalid request format", err.Error())
	}
	pos, err := controllers.ParsePosition(strings.Trim(string(req.Position), `"`))
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}

	expected, err := parseIfMatch(c.Get(fiber.HeaderIfMatch))
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}

	result, err := h.engine.ReorderQueue(c.UserContext(), middleware.OwnerID(c), id, pos, expected)
	if err != nil {
		return RespondEngineError(c, h.logger, err)
	}
	setVersion(c, result.Version)
	return RespondSuccess(c, result)
}

func setVersion(c *fiber.Ctx, version int64) {
	c.Set(fiber.HeaderETag, fmt.Sprintf("%q", strconv.FormatInt(version, 10)))
}

// parseIfMatch reads a queue version from an If-Match header. An empty header means unconditional.
func parseIfMatch(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return nil, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("If-Match", "must be a queue version, got %q", raw)
	}
	return &version, nil
}
