package server

import (
	"haven/internal/editor"
	"haven/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateDraft handles POST /api/admin/drafts - opens a new editing session.
func (s *Server) CreateDraft(c *fiber.Ctx) error {
	ctx := c.UserContext()

	snap, err := s.draftService.Create(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(snap)
}

// GetDraft handles GET /api/admin/drafts/:sessionID
func (s *Server) GetDraft(c *fiber.Ctx) error {
	ctx := c.UserContext()

	snap, err := s.draftService.Load(ctx, c.Params("sessionID"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snap)
}

// DraftSelect handles POST /api/admin/drafts/:sessionID/select
func (s *Server) DraftSelect(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Block int `json:"block"`
		Start int `json:"start"`
		End   int `json:"end"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	snap, err := s.draftService.Select(ctx, c.Params("sessionID"), req.Block, req.Start, req.End)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snap)
}

// DraftExec handles POST /api/admin/drafts/:sessionID/commands - applies one
// editing command. When the command needs a value, the snapshot's input field
// describes what to send to the input endpoint.
func (s *Server) DraftExec(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var cmd editor.Command
	if err := c.BodyParser(&cmd); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	snap, err := s.draftService.Exec(ctx, c.Params("sessionID"), cmd)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snap)
}

// DraftProvide handles POST /api/admin/drafts/:sessionID/input - answers an
// outstanding input request. An empty value cancels the suspended command.
func (s *Server) DraftProvide(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	snap, err := s.draftService.Provide(ctx, c.Params("sessionID"), req.Value)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(snap)
}

// DiscardDraft handles DELETE /api/admin/drafts/:sessionID
func (s *Server) DiscardDraft(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if err := s.draftService.Discard(ctx, c.Params("sessionID")); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Draft discarded"})
}
