package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
)

// Standard error codes
const (
	ErrCodeInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodePropagationLimit = "PROPAGATION_LIMIT"
)

// RespondSuccess sends a successful response with data
func RespondSuccess(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// RespondError sends an error response with a custom status code
func RespondError(c *fiber.Ctx, status int, code, message, details string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// RespondBadRequest sends a 400 for a body or path that could not be parsed
func RespondBadRequest(c *fiber.Ctx, message, details string) error {
	return RespondError(c, fiber.StatusBadRequest, ErrCodeBadRequest, message, details)
}

// RespondEngineError maps an engine error onto its HTTP status.
// Unexpected errors are logged and hidden behind a generic message.
func RespondEngineError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validation *apperrors.ValidationError
	var notFound *apperrors.NotFoundError
	var conflict *apperrors.ConflictError
	var limit *apperrors.PropagationLimitError

	switch {
	case errors.As(err, &validation):
		return RespondError(c, fiber.StatusBadRequest, ErrCodeValidation, err.Error(), validation.Field)
	case errors.As(err, &notFound):
		return RespondError(c, fiber.StatusNotFound, ErrCodeNotFound, err.Error(), notFound.Resource)
	case errors.As(err, &conflict):
		return RespondError(c, fiber.StatusConflict, ErrCodeConflict, err.Error(), conflict.Resource)
	case errors.As(err, &limit):
		logger.Error().Err(err).Str("owner_id", limit.OwnerID).Msg("Lock graph exceeded its visit limit")
		return RespondError(c, fiber.StatusInternalServerError, ErrCodePropagationLimit, "lock propagation aborted", err.Error())
	default:
		logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("Request failed")
		return RespondError(c, fiber.StatusInternalServerError, ErrCodeInternalServer, "An internal server error occurred", "")
	}
}

// paramID parses a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError(name, "must be a positive integer, got %q", c.Params(name))
	}
	return uint(id), nil
}
