package server

import (
	"io"

	"haven/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/admin/media - multipart upload forwarded to
// the external image host. The response carries the hosted URL to embed.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	ctx := c.UserContext()

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("An image file is required"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read the uploaded file"))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read the uploaded file"))
	}

	result, err := s.mediaService.Upload(ctx, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
