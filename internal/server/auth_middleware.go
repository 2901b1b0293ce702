package server

import (
	"context"
	"strings"

	"talenta/internal/middleware"
	"talenta/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired returns the authentication middleware. Websocket paths accept a
// single-use ticket in the query string since browsers cannot set headers on
// the upgrade request; everything else needs a Bearer token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isWSPath := strings.HasPrefix(c.Path(), "/api/ws") && c.Path() != "/api/ws/ticket"

		if ticket := c.Query("ticket"); ticket != "" && isWSPath {
			userID, err := s.authSvc.RedeemWSTicket(c.UserContext(), ticket)
			if err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "ws ticket redeem failed", "error", err)
			}
			if userID == 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
			setUser(c, userID, nil)
			return c.Next()
		}

		tokenString := middleware.BearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.tokens.Parse(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if s.revoked(c, claims) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		setUser(c, claims.UserID, claims)
		return c.Next()
	}
}

// OptionalUser attaches the caller when a valid Bearer token is present and
// otherwise lets the request through anonymously.
func (s *Server) OptionalUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := middleware.BearerToken(c)
		if tokenString == "" {
			return c.Next()
		}
		claims, err := s.tokens.Parse(tokenString)
		if err != nil || s.revoked(c, claims) {
			return c.Next()
		}
		setUser(c, claims.UserID, claims)
		return c.Next()
	}
}

// revoked fails open when Redis is unreachable; tokens still expire on their own.
func (s *Server) revoked(c *fiber.Ctx, claims *middleware.AccessClaims) bool {
	if claims.JTI == "" {
		return false
	}
	revoked, err := s.authSvc.IsRevoked(c.UserContext(), claims.JTI)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "revocation check failed", "error", err)
		return false
	}
	return revoked
}

func setUser(c *fiber.Ctx, userID uint, claims *middleware.AccessClaims) {
	c.Locals("userID", userID)
	if claims != nil {
		c.Locals("claims", claims)
	}
	// Sync to UserContext for logging and downstream services.
	c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, userID))
}
