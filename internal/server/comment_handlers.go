package server

import (
	"fmt"

	"quill/internal/forms"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddComment attaches a comment to a post and returns to the post page.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var form forms.CommentForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if _, err := s.feed.AddComment(c.UserContext(), currentUserID(c), id, form); err != nil {
		return s.respondError(c, err)
	}

	return c.Redirect(fmt.Sprintf("/posts/%d/", id), fiber.StatusFound)
}
