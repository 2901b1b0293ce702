package server

import (
	"talenta/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultFeedLimit = 20

// GetFeed handles GET /api/feed?sort=recent|popular|trending&skill=&limit=&offset=
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePagination(c, defaultFeedLimit)

	posts, err := s.feedSvc.Feed(c.UserContext(), service.FeedInput{
		ViewerID: currentUserID(c),
		Sort:     c.Query("sort", "recent"),
		Skill:    c.Query("skill"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetTrendingSkills handles GET /api/feed/trending-skills
func (s *Server) GetTrendingSkills(c *fiber.Ctx) error {
	skills, err := s.feedSvc.TrendingSkills(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(skills)
}

// GetSuggestedSkills handles GET /api/skills/suggested
func (s *Server) GetSuggestedSkills(c *fiber.Ctx) error {
	skills, err := s.feedSvc.SuggestedSkills(c.UserContext(), c.QueryInt("limit", service.SuggestedSkillsLimit))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(skills)
}

// Search handles GET /api/search?q=
func (s *Server) Search(c *fiber.Ctx) error {
	res, err := s.feedSvc.Search(c.UserContext(), c.Query("q"), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(res)
}
