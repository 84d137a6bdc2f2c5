package server

import (
	"haven/internal/models"
	"haven/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req service.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.authService.Login(ctx, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// Me handles GET /api/auth/me - the authenticated admin's own record.
func (s *Server) Me(c *fiber.Ctx) error {
	ctx := c.UserContext()
	adminID := c.Locals("adminID").(uint)

	admin, err := s.authService.CurrentAdmin(ctx, adminID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(admin)
}
