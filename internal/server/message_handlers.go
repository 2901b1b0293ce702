package server

import "github.com/gofiber/fiber/v2"

// GetConversations handles GET /api/messages/conversations
func (s *Server) GetConversations(c *fiber.Ctx) error {
	convs, err := s.messageSvc.Conversations(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(convs)
}

// GetMessageHistory handles GET /api/messages/:partnerId. Reading the thread
// marks the partner's messages as read.
func (s *Server) GetMessageHistory(c *fiber.Ctx) error {
	partnerID, err := parseID(c, "partnerId")
	if err != nil {
		return nil
	}
	msgs, err := s.messageSvc.History(c.UserContext(), currentUserID(c), partnerID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(msgs)
}

// SendMessage handles POST /api/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req struct {
		ReceiverID uint   `json:"receiver_id"`
		Content    string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ReceiverID == 0 {
		return badRequest(c, "receiver_id is required")
	}
	msg, err := s.messageSvc.Send(c.UserContext(), currentUserID(c), req.ReceiverID, req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
