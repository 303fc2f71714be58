package handler

import (
	"context"

	"loan-assist-be/internal/pkg/logger"
	internalWS "loan-assist-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type RealtimeHandler struct {
	hub      *internalWS.Hub
	answerer internalWS.QuestionAnswerer
	logger   logger.ILogger
}

func NewRealtimeHandler(hub *internalWS.Hub, answerer internalWS.QuestionAnswerer, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:      hub,
		answerer: answerer,
		logger:   log,
	}
}

// ServeWs upgrades the request and runs the session's question loop.
func (h *RealtimeHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	sessionID := c.Params("session_id")
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("RealtimeHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
		internalWS.ServeSession(context.Background(), h.hub, conn, sessionID, h.answerer)
		h.logger.Info("RealtimeHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
	})(c)
}

func (h *RealtimeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/:session_id", h.ServeWs)
}
