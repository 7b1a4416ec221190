package handler

import (
	"os"

	"iot-console-be/internal/pkg/logger"
	internalWS "iot-console-be/internal/websocket"
	"iot-console-be/pkg/jobs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JobFeedHandler exposes the live job status feed over websocket.
type JobFeedHandler struct {
	hub    *internalWS.Hub
	jobs   *jobs.Registry
	logger logger.ILogger
}

func NewJobFeedHandler(hub *internalWS.Hub, registry *jobs.Registry, log logger.ILogger) *JobFeedHandler {
	return &JobFeedHandler{
		hub:    hub,
		jobs:   registry,
		logger: log,
	}
}

// runningSnapshot lists the jobs currently in flight, for catch-up delivery
// to a console that connects mid-run.
func (h *JobFeedHandler) runningSnapshot() []internalWS.JobUpdate {
	keys := h.jobs.Running()
	snapshot := make([]internalWS.JobUpdate, 0, len(keys))
	for _, key := range keys {
		record := h.jobs.Get(key)
		snapshot = append(snapshot, internalWS.JobUpdate{
			EntityKey: record.EntityKey,
			State:     string(record.State),
			Message:   record.Message,
		})
	}
	return snapshot
}

func (h *JobFeedHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/ws/jobs", h.ServeWs)
}

// ServeWs handles websocket requests from the peer.
func (h *JobFeedHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on websocket handshakes, so the token
	// arrives as a query param; tooling may still use the header.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("JobFeedHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(c *websocket.Conn) {
			h.logger.Info("JobFeedHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(h.hub, c, userID, h.runningSnapshot())
			h.logger.Info("JobFeedHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
