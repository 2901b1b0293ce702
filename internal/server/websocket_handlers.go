package server

import (
	"encoding/json"

	"talenta/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// IssueWSTicket handles POST /api/ws/ticket. The ticket is redeemed once by
// the upgrade request on GET /api/ws?ticket=...
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	ticket, ttl, err := s.authSvc.IssueWSTicket(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(ttl.Seconds()),
	})
}

// WebsocketHandler streams the caller's change events. Frames are the
// {"type","payload"} envelopes published by the services.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || uid == 0 || s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register failed", "user_id", uid, "error", err)
			frame, _ := json.Marshal(fiber.Map{"error": err.Error()})
			_ = conn.WriteMessage(websocket.TextMessage, frame)
			_ = conn.Close()
			return
		}

		middleware.Logger.Debug("websocket connected", "user_id", uid, "connections", s.hub.ConnectionCount(uid))
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
