package server

import (
	"talenta/internal/middleware"
	"talenta/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignUp handles POST /api/auth/signup
func (s *Server) SignUp(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
		FullName string `json:"full_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := s.authSvc.SignUp(c.UserContext(), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		FullName: req.FullName,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// SignIn handles POST /api/auth/login
func (s *Server) SignIn(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := s.authSvc.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(res)
}

// SignOut handles POST /api/auth/logout by revoking the presented token.
func (s *Server) SignOut(c *fiber.Ctx) error {
	claims, _ := c.Locals("claims").(*middleware.AccessClaims)
	if err := s.authSvc.SignOut(c.UserContext(), claims); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is the
// same whether or not the address is registered.
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	token, err := s.authSvc.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return mapServiceError(c, err)
	}

	resp := fiber.Map{"message": "If that address is registered, a reset link is on its way."}
	if token != "" {
		resp["reset_token"] = token
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// ResetPassword handles POST /api/auth/reset-password
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Token           string `json:"token"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	err := s.authSvc.ResetPassword(c.UserContext(), service.ResetPasswordInput{
		Token:    req.Token,
		Password: req.Password,
		Confirm:  req.ConfirmPassword,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

// CurrentUser handles GET /api/auth/me
func (s *Server) CurrentUser(c *fiber.Ctx) error {
	profile, err := s.authSvc.CurrentUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}
