package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// OwnerHeader carries the identity every command is scoped to
const OwnerHeader = "X-Owner-ID"

const ownerKey = "owner_id"

// RequireOwner rejects requests without an owner header
func RequireOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := strings.TrimSpace(c.Get(OwnerHeader))
		if owner == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error": fiber.Map{
					"code":    "UNAUTHORIZED",
					"message": "Authentication required",
					"details": OwnerHeader + " header is missing",
				},
			})
		}
		c.Locals(ownerKey, owner)
		return c.Next()
	}
}

// OwnerID returns the owner resolved by RequireOwner
func OwnerID(c *fiber.Ctx) string {
	owner, _ := c.Locals(ownerKey).(string)
	return owner
}
