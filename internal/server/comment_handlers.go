package server

import (
	"haven/internal/featureflags"
	"haven/internal/models"
	"haven/internal/repository"
	"haven/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comments - public submission.
// The comment lands in the moderation queue and is invisible until approved.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if !s.flags.Enabled(featureflags.FeatureComments, postID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewValidationError("Comments are temporarily closed"))
	}

	var req struct {
		Content string `json:"content"`
		Author  string `json:"author"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.Submit(ctx, service.SubmitCommentInput{
		PostID:  postID,
		Content: req.Content,
		Author:  req.Author,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/posts/:id/comments - approved comments only.
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListApproved(ctx, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return c.JSON(comments)
}

// GetModerationQueue handles GET /api/admin/comments?filter=pending|approved|all
func (s *Server) GetModerationQueue(c *fiber.Ctx) error {
	ctx := c.UserContext()

	filter := repository.CommentModerationFilter(c.Query("filter", string(repository.CommentFilterPending)))
	switch filter {
	case repository.CommentFilterAll, repository.CommentFilterPending, repository.CommentFilterApproved:
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("filter must be all, pending or approved"))
	}

	comments, err := s.commentService.ListForModeration(ctx, filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return c.JSON(comments)
}

// GetPendingCommentCount handles GET /api/admin/comments/pending/count
func (s *Server) GetPendingCommentCount(c *fiber.Ctx) error {
	ctx := c.UserContext()

	count, err := s.commentService.PendingCount(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"pending": count})
}

// ApproveComment handles POST /api/admin/comments/:id/approve
func (s *Server) ApproveComment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.Approve(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// BulkApproveComments handles POST /api/admin/comments/bulk-approve
func (s *Server) BulkApproveComments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.commentService.BulkApprove(ctx, req.IDs)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// RejectComment handles DELETE /api/admin/comments/:id - rejection deletes.
func (s *Server) RejectComment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.Reject(ctx, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment rejected"})
}
