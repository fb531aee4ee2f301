package repository

import (
	"context"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")

	exists, err := repo.Exists(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, &models.Follow{UserID: reader.ID, AuthorID: author.ID}))

	exists, err = repo.Exists(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// The relationship is directed: the author does not follow the reader.
	reverse, err := repo.Exists(ctx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.False(t, reverse)

	require.NoError(t, repo.Delete(ctx, reader.ID, author.ID))

	exists, err = repo.Exists(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting a non-existent follow is a no-op, not an error.
	assert.NoError(t, repo.Delete(ctx, reader.ID, author.ID))
}

func TestFollowPairUniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")

	require.NoError(t, repo.Create(ctx, &models.Follow{UserID: reader.ID, AuthorID: author.ID}))

	// The composite unique index rejects a duplicate pair at the schema level.
	err := repo.Create(ctx, &models.Follow{UserID: reader.ID, AuthorID: author.ID})
	assert.Error(t, err)

	var count int64
	db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", reader.ID, author.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
