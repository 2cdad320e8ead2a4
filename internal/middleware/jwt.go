package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/gigflow/internal/utils"
)

// TokenCookie is the cookie the frontend stores the session token in.
const TokenCookie = "jm_token"

// JWTAuth accepts the token from the session cookie or, failing that, an
// Authorization: Bearer header.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(TokenCookie)
		if tokenStr == "" {
			tokenStr = bearer(c.Get(fiber.HeaderAuthorization))
		}
		if tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "not authorized, no token")
		}

		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "not authorized, token failed")
		}

		c.Locals("user", claims)
		return c.Next()
	}
}

func bearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
