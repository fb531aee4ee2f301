package server

import (
	"errors"
	"fmt"
	"io"

	"quill/internal/forms"
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Index renders the paginated list of all posts, newest first. The page cache
// middleware in front of this handler serves repeat requests for 20 seconds.
func (s *Server) Index(c *fiber.Ctx) error {
	view, err := s.feed.Index(c.UserContext(), pageQuery(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// PostDetail renders a single post with its comments and a blank comment form.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	view, err := s.feed.PostDetail(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// NewPostForm renders a blank post form with the selectable groups.
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	groups, err := s.feed.Groups(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"form":   forms.PostForm{},
		"groups": groups,
	})
}

// saveImage reads the optional multipart image field and stores it, returning
// the public URL. No file attached is not an error.
func (s *Server) saveImage(c *fiber.Ctx) (string, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}

	if s.images == nil {
		middleware.Logger.WarnContext(c.UserContext(), "Image upload skipped, storage unavailable")
		return "", nil
	}

	file, err := header.Open()
	if err != nil {
		return "", models.NewValidationError("Could not read uploaded image")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", models.NewValidationError("Could not read uploaded image")
	}

	return s.images.Save(c.UserContext(), data)
}

// CreatePost creates a new post for the authenticated user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var form forms.PostForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	imageURL, err := s.saveImage(c)
	if err != nil {
		return s.respondError(c, err)
	}

	post, err := s.feed.CreatePost(c.UserContext(), currentUserID(c), form, imageURL)
	if err != nil {
		return s.respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "Post created", "post_id", post.ID)

	return c.Status(fiber.StatusCreated).JSON(post)
}

// EditPostForm renders the edit form for a post. Users who are not the author
// are sent back to the post page without an error.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	view, err := s.feed.PostDetail(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	if view.Post.AuthorID != currentUserID(c) {
		return c.Redirect(fmt.Sprintf("/posts/%d/", id), fiber.StatusFound)
	}

	return c.JSON(fiber.Map{
		"form": forms.PostForm{Text: view.Post.Text, GroupID: view.Post.GroupID},
		"post": view.Post,
	})
}

// EditPost updates a post's text, group and image. Only the author may edit;
// anyone else is silently redirected to the post page.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var form forms.PostForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	imageURL, err := s.saveImage(c)
	if err != nil {
		return s.respondError(c, err)
	}

	post, err := s.feed.EditPost(c.UserContext(), currentUserID(c), id, form, imageURL)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeUnauthorized {
			return c.Redirect(fmt.Sprintf("/posts/%d/", id), fiber.StatusFound)
		}
		return s.respondError(c, err)
	}

	return c.JSON(post)
}

// DeletePost removes a post together with its comments. Author only.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.feed.DeletePost(c.UserContext(), currentUserID(c), id); err != nil {
		return s.respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "Post deleted", "post_id", id)

	return c.Redirect("/", fiber.StatusFound)
}
