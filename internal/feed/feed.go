// Package feed composes repository queries and pagination into the view
// contexts each page type needs. It carries no HTML concerns; handlers (or a
// host renderer) turn these contexts into responses.
package feed

import (
	"context"

	"quill/internal/forms"
	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/repository"
)

// Service composes repositories into per-view read models and owns the
// write-path rules: author-only edits, idempotent follows, group checks.
type Service struct {
	users    repository.UserRepository
	groups   repository.GroupRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
}

// NewService creates a feed service over the given repositories.
func NewService(
	users repository.UserRepository,
	groups repository.GroupRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	follows repository.FollowRepository,
) *Service {
	return &Service{
		users:    users,
		groups:   groups,
		posts:    posts,
		comments: comments,
		follows:  follows,
	}
}

// IndexView is the home feed context.
type IndexView struct {
	Page pagination.Page[*models.Post] `json:"page"`
}

// GroupView is a group page context: group metadata plus its posts.
type GroupView struct {
	Group *models.Group                 `json:"group"`
	Page  pagination.Page[*models.Post] `json:"page"`
}

// ProfileView is an author page context. Following is always false for
// unauthenticated viewers.
type ProfileView struct {
	Author    *models.User                  `json:"author"`
	Following bool                          `json:"following"`
	Page      pagination.Page[*models.Post] `json:"page"`
}

// PostDetailView is a single post context: the post, its comments and a
// fresh comment form for the reply box.
type PostDetailView struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
	Form     forms.CommentForm `json:"form"`
}

// FollowView is the personalized feed context for an authenticated reader.
type FollowView struct {
	Page pagination.Page[*models.Post] `json:"page"`
}

// paginate runs the count/clamp/fetch sequence shared by every listing view.
func paginate(
	ctx context.Context,
	count func(context.Context) (int64, error),
	list func(context.Context, int, int) ([]*models.Post, error),
	requested int,
) (pagination.Page[*models.Post], error) {
	var empty pagination.Page[*models.Post]

	total, err := count(ctx)
	if err != nil {
		return empty, err
	}

	number := pagination.Clamp(requested, pagination.TotalPages(total, pagination.Size))
	items, err := list(ctx, pagination.Size, pagination.Offset(number, pagination.Size))
	if err != nil {
		return empty, err
	}

	return pagination.New(items, number, pagination.Size, total), nil
}

// Index returns the home feed: all posts, newest first.
func (s *Service) Index(ctx context.Context, page int) (*IndexView, error) {
	p, err := paginate(ctx, s.posts.Count, s.posts.List, page)
	if err != nil {
		return nil, err
	}
	return &IndexView{Page: p}, nil
}

// Groups returns all groups, for group pickers and the group directory.
func (s *Service) Groups(ctx context.Context) ([]models.Group, error) {
	return s.groups.List(ctx)
}

// GroupPosts returns a group page by slug, or NotFound for an unknown slug.
func (s *Service) GroupPosts(ctx context.Context, slug string, page int) (*GroupView, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	p, err := paginate(ctx,
		func(ctx context.Context) (int64, error) { return s.posts.CountByGroup(ctx, group.ID) },
		func(ctx context.Context, limit, offset int) ([]*models.Post, error) {
			return s.posts.ListByGroup(ctx, group.ID, limit, offset)
		},
		page,
	)
	if err != nil {
		return nil, err
	}
	return &GroupView{Group: group, Page: p}, nil
}

// Profile returns an author page by username. viewerID is zero when the
// request is unauthenticated, in which case Following is false.
func (s *Service) Profile(ctx context.Context, username string, viewerID uint, page int) (*ProfileView, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	following := false
	if viewerID != 0 {
		following, err = s.follows.Exists(ctx, viewerID, author.ID)
		if err != nil {
			return nil, err
		}
	}

	p, err := paginate(ctx,
		func(ctx context.Context) (int64, error) { return s.posts.CountByAuthor(ctx, author.ID) },
		func(ctx context.Context, limit, offset int) ([]*models.Post, error) {
			return s.posts.ListByAuthor(ctx, author.ID, limit, offset)
		},
		page,
	)
	if err != nil {
		return nil, err
	}
	return &ProfileView{Author: author, Following: following, Page: p}, nil
}

// PostDetail returns a single post with its comments and an empty comment form.
func (s *Service) PostDetail(ctx context.Context, postID uint) (*PostDetailView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	return &PostDetailView{
		Post:     post,
		Comments: comments,
		Form:     forms.CommentForm{},
	}, nil
}

// FollowIndex returns the personalized feed: posts by every author the user
// follows, newest first.
func (s *Service) FollowIndex(ctx context.Context, userID uint, page int) (*FollowView, error) {
	p, err := paginate(ctx,
		func(ctx context.Context) (int64, error) { return s.posts.CountByFollowed(ctx, userID) },
		func(ctx context.Context, limit, offset int) ([]*models.Post, error) {
			return s.posts.ListByFollowed(ctx, userID, limit, offset)
		},
		page,
	)
	if err != nil {
		return nil, err
	}
	return &FollowView{Page: p}, nil
}
