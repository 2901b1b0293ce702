package server

import "github.com/gofiber/fiber/v2"

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	list, err := s.notificationSvc.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(list)
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	n, err := s.notificationSvc.UnreadCount(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	n, err := s.notificationSvc.MarkRead(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(n)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	n, err := s.notificationSvc.MarkAllRead(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

// GetBadges handles GET /api/badges
func (s *Server) GetBadges(c *fiber.Ctx) error {
	badges, err := s.notificationSvc.Badges(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(badges)
}
