package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/gigflow/internal/utils"
)

// AttachJWTLocals exposes the authenticated user as the "userId" local
// (uuid.UUID).
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(*utils.Claims)
		if !ok || claims == nil {
			return fiber.ErrUnauthorized
		}

		uid, err := uuid.Parse(strings.TrimSpace(claims.UserID))
		if err != nil || uid == uuid.Nil {
			return fiber.NewError(fiber.StatusUnauthorized, "not authorized, bad subject")
		}

		c.Locals("userId", uid)
		return c.Next()
	}
}
