package server

import (
	"haven/internal/featureflags"
	"haven/internal/models"
	"haven/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Subscribe handles POST /api/subscribers - public newsletter signup.
func (s *Server) Subscribe(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if !s.flags.Enabled(featureflags.FeatureNewsletter, 0) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewValidationError("Newsletter signups are temporarily closed"))
	}

	var req service.SubscribeInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sub, err := s.subscriberService.Subscribe(ctx, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// GetSubscribers handles GET /api/admin/subscribers
func (s *Server) GetSubscribers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, 50)

	subs, err := s.subscriberService.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	if subs == nil {
		subs = []*models.Subscriber{}
	}
	return c.JSON(subs)
}

// ExportSubscribers handles GET /api/admin/subscribers/export - a plain-text
// download of one email per line, ready to paste into a mail tool.
func (s *Server) ExportSubscribers(c *fiber.Ctx) error {
	ctx := c.UserContext()

	out, err := s.subscriberService.ExportEmails(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="subscribers.txt"`)
	return c.SendString(out)
}

// DeleteSubscriber handles DELETE /api/admin/subscribers/:id
func (s *Server) DeleteSubscriber(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.subscriberService.Remove(ctx, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subscriber removed"})
}
