package feed

import (
	"context"
	"errors"

	"quill/internal/forms"
	"quill/internal/models"
)

// CreatePost validates the form and persists a new post for the given
// author. imageURL is empty when no image was uploaded.
func (s *Service) CreatePost(ctx context.Context, authorID uint, form forms.PostForm, imageURL string) (*models.Post, error) {
	if fields := forms.Validate(form); fields != nil {
		return nil, models.NewFieldValidationError(fields)
	}

	if err := s.checkGroup(ctx, form.GroupID); err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     form.Text,
		GroupID:  form.GroupID,
		ImageURL: imageURL,
		AuthorID: authorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.posts.GetByID(ctx, post.ID)
}

// EditPost applies the form to an existing post. Only the author may edit;
// anyone else gets an authorization error the handler turns into a silent
// redirect. The author is immutable, the write never touches it.
func (s *Service) EditPost(ctx context.Context, userID, postID uint, form forms.PostForm, imageURL string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != userID {
		return nil, models.NewUnauthorizedError("Only the author can edit a post")
	}

	if fields := forms.Validate(form); fields != nil {
		return nil, models.NewFieldValidationError(fields)
	}
	if err := s.checkGroup(ctx, form.GroupID); err != nil {
		return nil, err
	}

	post.Text = form.Text
	post.GroupID = form.GroupID
	if imageURL != "" {
		post.ImageURL = imageURL
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.posts.GetByID(ctx, post.ID)
}

// DeletePost removes a post and its comments. Author-only, like EditPost.
func (s *Service) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewUnauthorizedError("Only the author can delete a post")
	}
	return s.posts.Delete(ctx, postID)
}

// AddComment validates and attaches a comment to a post. The author comes
// from the authenticated caller, the post from the route.
func (s *Service) AddComment(ctx context.Context, userID, postID uint, form forms.CommentForm) (*models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	if fields := forms.Validate(form); fields != nil {
		return nil, models.NewFieldValidationError(fields)
	}

	comment := &models.Comment{
		Text:     form.Text,
		AuthorID: userID,
		PostID:   postID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.comments.GetByID(ctx, comment.ID)
}

// Follow subscribes userID to the author's posts. Following yourself and
// following an already-followed author are both no-ops, not errors.
func (s *Service) Follow(ctx context.Context, userID uint, username string) error {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if author.ID == userID {
		return nil
	}

	exists, err := s.follows.Exists(ctx, userID, author.ID)
	if err != nil || exists {
		return err
	}

	return s.follows.Create(ctx, &models.Follow{UserID: userID, AuthorID: author.ID})
}

// Unfollow removes the subscription. Unfollowing a non-followed author is a
// no-op.
func (s *Service) Unfollow(ctx context.Context, userID uint, username string) error {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.follows.Delete(ctx, userID, author.ID)
}

// CreateGroup validates and persists a new topic group.
func (s *Service) CreateGroup(ctx context.Context, form forms.GroupForm) (*models.Group, error) {
	if fields := forms.Validate(form); fields != nil {
		return nil, models.NewFieldValidationError(fields)
	}

	if _, err := s.groups.GetBySlug(ctx, form.Slug); err == nil {
		return nil, models.NewFieldValidationError(map[string]string{"slug": "This slug is already in use"})
	} else if !isNotFound(err) {
		return nil, err
	}

	group := &models.Group{
		Title:       form.Title,
		Slug:        form.Slug,
		Description: form.Description,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// checkGroup verifies a group reference on a post form. A dangling reference
// is a validation error on the form, not a NotFound on the request.
func (s *Service) checkGroup(ctx context.Context, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	if _, err := s.groups.GetByID(ctx, *groupID); err != nil {
		if isNotFound(err) {
			return models.NewFieldValidationError(map[string]string{"group_id": "Group does not exist"})
		}
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}
