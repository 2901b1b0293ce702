package server

import (
	"talenta/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddReference handles POST /api/references. Links send a url; documents send
// a multipart "file".
func (s *Server) AddReference(c *fiber.Ctx) error {
	var req struct {
		Type        string `json:"type" form:"type"`
		Title       string `json:"title" form:"title"`
		Description string `json:"description" form:"description"`
		URL         string `json:"url" form:"url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	file, err := formUpload(c, "file")
	if err != nil {
		return mapServiceError(c, err)
	}

	ref, err := s.referenceSvc.Add(c.UserContext(), service.AddReferenceInput{
		UserID:      currentUserID(c),
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		File:        file,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ref)
}

// DeleteReference handles DELETE /api/references/:id
func (s *Server) DeleteReference(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.referenceSvc.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
