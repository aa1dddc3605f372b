package handler

import (
	"ai-docrouter-be/internal/pkg/serverutils"
	ws "ai-docrouter-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ActivityHandler streams audit entries to websocket viewers.
type ActivityHandler struct {
	hub       *ws.Hub
	jwtSecret string
}

func NewActivityHandler(hub *ws.Hub, jwtSecret string) *ActivityHandler {
	return &ActivityHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

func (h *ActivityHandler) RegisterRoutes(r fiber.Router) {
	r.Use("/ws", h.upgrade)
	r.Get("/ws/activity", websocket.New(func(c *websocket.Conn) {
		subject, _ := c.Locals("subject").(string)
		ws.ServeWs(h.hub, c, subject)
	}))
}

func (h *ActivityHandler) upgrade(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	if h.jwtSecret == "" {
		return ctx.Next()
	}

	claims, err := serverutils.ParseToken(h.jwtSecret, serverutils.BearerToken(ctx))
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}
	if sub, ok := claims["sub"].(string); ok {
		ctx.Locals("subject", sub)
	}
	return ctx.Next()
}
