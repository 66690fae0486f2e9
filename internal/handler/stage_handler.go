package handler

import (
	"strings"

	"copyflow-be/internal/pkg/logger"
	"copyflow-be/internal/pkg/serverutils"
	internalWS "copyflow-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"
)

// StageHandler streams the stage events of one workflow over a websocket.
type StageHandler struct {
	hub    *internalWS.Hub
	secret string
	logger logger.ILogger
}

func NewStageHandler(hub *internalWS.Hub, secret string, log logger.ILogger) *StageHandler {
	return &StageHandler{
		hub:    hub,
		secret: secret,
		logger: log,
	}
}

// ServeWs authenticates the handshake with the workflow session token.
// Browsers cannot set headers on a websocket handshake, so the query
// parameter is tried first. ?page= narrows the stream to one page.
func (h *StageHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (query 'token' or header 'Authorization')"))
	}

	workflowID, err := serverutils.ParseSessionToken(h.secret, tokenStr)
	if err != nil {
		h.logger.Warn("StageHandler", "Invalid token in websocket handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	// the websocket callback runs after the request buffers are recycled
	page := utils.CopyString(c.Query("page"))
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("StageHandler", "Starting websocket session", map[string]interface{}{"workflow_id": workflowID, "page": page})
		internalWS.ServeWs(h.hub, conn, workflowID, page)
		h.logger.Info("StageHandler", "Websocket session ended", map[string]interface{}{"workflow_id": workflowID})
	})(c)
}

func (h *StageHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/v1/stages", h.ServeWs)
}
