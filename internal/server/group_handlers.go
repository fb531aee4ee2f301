package server

import (
	"quill/internal/forms"
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GroupPosts renders a group page with its paginated posts.
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	view, err := s.feed.GroupPosts(c.UserContext(), c.Params("slug"), pageQuery(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// NewGroupForm renders a blank group creation form.
func (s *Server) NewGroupForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"form": forms.GroupForm{}})
}

// CreateGroup creates a new topic group.
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var form forms.GroupForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	group, err := s.feed.CreateGroup(c.UserContext(), form)
	if err != nil {
		return s.respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "Group created", "slug", group.Slug)

	return c.Status(fiber.StatusCreated).JSON(group)
}
