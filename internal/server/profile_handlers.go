package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Profile renders an author's page with their paginated posts. When the
// viewer is authenticated the view reports whether they follow the author.
func (s *Server) Profile(c *fiber.Ctx) error {
	view, err := s.feed.Profile(c.UserContext(), c.Params("username"), currentUserID(c), pageQuery(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// Follow subscribes the current user to an author and returns to the profile.
func (s *Server) Follow(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := s.feed.Follow(c.UserContext(), currentUserID(c), username); err != nil {
		return s.respondError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/profile/%s/", username), fiber.StatusFound)
}

// Unfollow removes the subscription and returns to the profile.
func (s *Server) Unfollow(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := s.feed.Unfollow(c.UserContext(), currentUserID(c), username); err != nil {
		return s.respondError(c, err)
	}
	return c.Redirect(fmt.Sprintf("/profile/%s/", username), fiber.StatusFound)
}

// FollowIndex renders the personalized feed of posts by followed authors.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	view, err := s.feed.FollowIndex(c.UserContext(), currentUserID(c), pageQuery(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}
