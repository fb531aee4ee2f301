package server

import (
	"errors"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a positive numeric :id route parameter.
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid ID")
	}
	return uint(id), nil
}

// pageQuery reads ?page=N, defaulting to the first page. Out-of-range values
// are clamped later by the pagination layer, not rejected here.
func pageQuery(c *fiber.Ctx) int {
	return c.QueryInt("page", 1)
}

// currentUserID returns the authenticated user's ID, or 0 when the request
// carries no valid credentials.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// respondError maps application error codes to HTTP statuses.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeNotFound:
			status = fiber.StatusNotFound
		case models.CodeValidation:
			status = fiber.StatusBadRequest
		case models.CodeAuthRequired:
			status = fiber.StatusUnauthorized
		case models.CodeUnauthorized:
			status = fiber.StatusForbidden
		}
	}
	return models.RespondWithError(c, status, err)
}
