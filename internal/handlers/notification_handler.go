package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/gigflow/internal/middleware"
	"github.com/Windi-Fikriyansyah/gigflow/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigflow/internal/utils"
)

type NotificationHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
}

func NewNotificationHandler(hub *realtime.Hub, secret string) *NotificationHandler {
	return &NotificationHandler{Hub: hub, JWTSecret: secret}
}

// Authorize runs before the upgrade. Browsers cannot set headers on a
// websocket handshake, so the token comes from ?token= or the session cookie.
func (h *NotificationHandler) Authorize(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = c.Cookies(middleware.TokenCookie)
	}
	claims, err := utils.ParseJWT(h.JWTSecret, tokenStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "not authorized, token failed")
	}
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "not authorized, bad subject")
	}
	c.Locals("userId", uid)
	return c.Next()
}

func (h *NotificationHandler) Serve(conn *websocket.Conn) {
	uid, ok := conn.Locals("userId").(uuid.UUID)
	if !ok {
		_ = conn.Close()
		return
	}
	log.Printf("[realtime] user %s connected", uid)
	realtime.Serve(h.Hub, conn, uid)
	log.Printf("[realtime] user %s disconnected, %d sockets left", uid, h.Hub.Connected(uid))
}
