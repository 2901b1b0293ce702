package server

import (
	"talenta/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. Accepts JSON or multipart with an
// optional "media" file.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content        string `json:"content" form:"content"`
		SkillCategory  string `json:"skill_category" form:"skill_category"`
		PrivacySetting string `json:"privacy_setting" form:"privacy_setting"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	media, err := formUpload(c, "media")
	if err != nil {
		return mapServiceError(c, err)
	}

	post, err := s.postSvc.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:         currentUserID(c),
		Content:        req.Content,
		SkillCategory:  req.SkillCategory,
		PrivacySetting: req.PrivacySetting,
		Media:          media,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.feedSvc.GetPost(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id. Only the author can edit.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content        *string `json:"content"`
		SkillCategory  *string `json:"skill_category"`
		PrivacySetting *string `json:"privacy_setting"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := s.postSvc.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:         currentUserID(c),
		PostID:         id,
		Content:        req.Content,
		SkillCategory:  req.SkillCategory,
		PrivacySetting: req.PrivacySetting,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postSvc.DeletePost(c.UserContext(), currentUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like. Liking twice is a no-op.
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.setLike(c, true)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	return s.setLike(c, false)
}

func (s *Server) setLike(c *fiber.Ctx, liked bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.engagementSvc.SetLike(c.UserContext(), currentUserID(c), id, liked)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(state)
}

// SharePost handles POST /api/posts/:id/share
func (s *Server) SharePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.engagementSvc.SharePost(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(state)
}

// ToggleLike handles POST /api/posts/:id/like/toggle
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.engagementSvc.ToggleLike(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(state)
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.engagementSvc.ListComments(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	comment, err := s.engagementSvc.AddComment(c.UserContext(), currentUserID(c), id, req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
