package server

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/cache"
)

// The index page is cached as rendered bytes for 20 seconds; a post created
// inside the window becomes visible only after the entry expires.
func TestIndexPageCaching(t *testing.T) {
	app, _, db := setupTestApp(t)

	mr := miniredis.RunT(t)
	cache.InitRedis(mr.Addr())
	t.Cleanup(func() {
		// Point the cache at a closed address so later tests run uncached
		cache.InitRedis("127.0.0.1:1")
	})

	author := createTestUser(t, db, "author")
	createTestPost(t, db, author, "old post", time.Now().Add(-time.Minute), nil)

	fetchIndex := func() string {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}

	first := fetchIndex()
	assert.Contains(t, first, "old post")

	createTestPost(t, db, author, "new post", time.Now(), nil)

	second := fetchIndex()
	assert.Equal(t, first, second, "cached bytes are served verbatim within the TTL")
	assert.NotContains(t, second, "new post")

	mr.FastForward(cache.IndexPageTTL + time.Second)

	third := fetchIndex()
	assert.Contains(t, third, "new post")
}
