package server

import (
	"strings"

	"talenta/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultProfilePostsLimit = 30

// GetProfile handles GET /api/profiles/:id
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	profile, err := s.profileSvc.GetProfile(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetProfilePosts handles GET /api/profiles/:id/posts
func (s *Server) GetProfilePosts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultProfilePostsLimit)
	posts, err := s.feedSvc.UserPosts(c.UserContext(), id, currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetProfileReferences handles GET /api/profiles/:id/references
func (s *Server) GetProfileReferences(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	refs, err := s.referenceSvc.List(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(refs)
}

// UpdateMyProfile handles PUT /api/profiles/me. JSON bodies edit fields only;
// multipart bodies may also carry an "avatar" file.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	in := service.UpsertProfileInput{UserID: currentUserID(c)}

	if c.Is("json") {
		var req struct {
			Username  *string   `json:"username"`
			FullName  *string   `json:"full_name"`
			Bio       *string   `json:"bio"`
			SkillTags *[]string `json:"skill_tags"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		in.Username, in.FullName, in.Bio = req.Username, req.FullName, req.Bio
		if req.SkillTags != nil {
			in.SkillTags, in.SetSkillTags = *req.SkillTags, true
		}
	} else {
		in.Username = formValue(c, "username")
		in.FullName = formValue(c, "full_name")
		in.Bio = formValue(c, "bio")
		in.SkillTags, in.SetSkillTags = formSkillTags(c)

		avatar, err := formUpload(c, "avatar")
		if err != nil {
			return mapServiceError(c, err)
		}
		in.Avatar = avatar
	}

	profile, err := s.profileSvc.UpsertProfile(c.UserContext(), in)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// formSkillTags accepts repeated skill_tags fields or one comma separated value.
func formSkillTags(c *fiber.Ctx) ([]string, bool) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, false
	}
	vals, ok := form.Value["skill_tags"]
	if !ok {
		return nil, false
	}
	var tags []string
	for _, v := range vals {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags, true
}

// SetHireable handles PATCH /api/profiles/me/hireable
func (s *Server) SetHireable(c *fiber.Ctx) error {
	var req struct {
		Hireable *bool `json:"hireable"`
	}
	if err := c.BodyParser(&req); err != nil || req.Hireable == nil {
		return badRequest(c, "hireable is required")
	}
	profile, err := s.profileSvc.SetHireable(c.UserContext(), currentUserID(c), *req.Hireable)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// FollowProfile handles POST /api/profiles/:id/follow
func (s *Server) FollowProfile(c *fiber.Ctx) error {
	return s.setFollow(c, true)
}

// UnfollowProfile handles DELETE /api/profiles/:id/follow
func (s *Server) UnfollowProfile(c *fiber.Ctx) error {
	return s.setFollow(c, false)
}

func (s *Server) setFollow(c *fiber.Ctx, follow bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	state, err := s.engagementSvc.SetFollow(c.UserContext(), currentUserID(c), id, follow)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(state)
}

// HireInquiry handles POST /api/profiles/:id/hire
func (s *Server) HireInquiry(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	msg, err := s.messageSvc.HireInquiry(c.UserContext(), currentUserID(c), id, req.Message)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetFollowStatus handles GET /api/profiles/:id/follow
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	following, err := s.engagementSvc.FollowStatus(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"profile_id": id, "following": following})
}
