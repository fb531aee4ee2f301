package repository

import (
	"context"
	"testing"
	"time"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepositoryListByPost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	commenter := createTestUser(t, db, "commenter")
	post := createTestPost(t, db, author, "a post", time.Now(), nil)
	other := createTestPost(t, db, author, "another post", time.Now(), nil)

	require.NoError(t, repo.Create(ctx, &models.Comment{Text: "first", AuthorID: commenter.ID, PostID: post.ID}))
	require.NoError(t, repo.Create(ctx, &models.Comment{Text: "second", AuthorID: author.ID, PostID: post.ID}))
	require.NoError(t, repo.Create(ctx, &models.Comment{Text: "elsewhere", AuthorID: commenter.ID, PostID: other.ID}))

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	// Oldest first, with the author resolved for rendering.
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "commenter", comments[0].Author.Username)
	assert.Equal(t, "second", comments[1].Text)
}

func TestCommentRepositoryGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)

	_, err := repo.GetByID(context.Background(), 7)
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}
