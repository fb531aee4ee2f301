package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/models"
)

func TestIndexPagination(t *testing.T) {
	app, _, db := setupTestApp(t)

	author := createTestUser(t, db, "author")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 13; i++ {
		createTestPost(t, db, author, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute), nil)
	}

	resp := doJSON(t, app, "GET", "/", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	items := pageItems(t, body)
	assert.Len(t, items, 10)

	page := body["page"].(map[string]any)
	assert.EqualValues(t, 2, page["total_pages"])
	assert.EqualValues(t, 13, page["total_items"])
	assert.Equal(t, true, page["has_next"])

	// Newest first
	first := items[0].(map[string]any)
	assert.Equal(t, "post 12", first["text"])

	resp = doJSON(t, app, "GET", "/?page=2", nil, nil)
	body = decodeBody(t, resp)
	assert.Len(t, pageItems(t, body), 3)

	// Out-of-range pages clamp to the last page instead of erroring
	resp = doJSON(t, app, "GET", "/?page=99", nil, nil)
	body = decodeBody(t, resp)
	page = body["page"].(map[string]any)
	assert.EqualValues(t, 2, page["number"])
	assert.Len(t, pageItems(t, body), 3)
}

func TestCreatePost(t *testing.T) {
	app, srv, db := setupTestApp(t)
	user := createTestUser(t, db, "alice")
	cookie := authCookie(t, srv, user)

	resp := doJSON(t, app, "POST", "/create/", fiber.Map{"text": "first post"}, cookie)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "first post", body["text"])
	assert.EqualValues(t, user.ID, body["author_id"])

	resp = doJSON(t, app, "GET", "/", nil, nil)
	items := pageItems(t, decodeBody(t, resp))
	require.Len(t, items, 1)
}

func TestCreatePostValidation(t *testing.T) {
	app, srv, db := setupTestApp(t)
	user := createTestUser(t, db, "alice")
	cookie := authCookie(t, srv, user)

	resp := doJSON(t, app, "POST", "/create/", fiber.Map{"text": ""}, cookie)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "text")

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCreatePostUnknownGroup(t *testing.T) {
	app, srv, db := setupTestApp(t)
	user := createTestUser(t, db, "alice")
	cookie := authCookie(t, srv, user)

	missing := uint(999)
	resp := doJSON(t, app, "POST", "/create/", fiber.Map{
		"text":     "orphan",
		"group_id": missing,
	}, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestNewPostFormListsGroups(t *testing.T) {
	app, srv, db := setupTestApp(t)
	user := createTestUser(t, db, "alice")
	require.NoError(t, db.Create(&models.Group{Title: "Cats", Slug: "cats"}).Error)

	resp := doJSON(t, app, "GET", "/create/", nil, authCookie(t, srv, user))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	groups := body["groups"].([]any)
	require.Len(t, groups, 1)
}

func TestPostDetail(t *testing.T) {
	app, _, db := setupTestApp(t)

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author, "hello", time.Now(), nil)

	resp := doJSON(t, app, "GET", postPath(post.ID), nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	detail := body["post"].(map[string]any)
	assert.Equal(t, "hello", detail["text"])
	author2 := detail["author"].(map[string]any)
	assert.Equal(t, "author", author2["username"])
	assert.Empty(t, body["comments"])
}

func TestPostDetailNotFound(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, "GET", "/posts/999/", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/posts/abc/", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEditPostByAuthor(t *testing.T) {
	app, srv, db := setupTestApp(t)

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author, "original", time.Now(), nil)

	resp := doJSON(t, app, "POST", postPath(post.ID)+"edit/",
		fiber.Map{"text": "edited"}, authCookie(t, srv, author))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "edited", body["text"])
	assert.EqualValues(t, author.ID, body["author_id"])
}

// A non-author editing a post is redirected to the post page and nothing
// changes.
func TestEditPostByOtherUser(t *testing.T) {
	app, srv, db := setupTestApp(t)

	author := createTestUser(t, db, "author")
	stranger := createTestUser(t, db, "stranger")
	post := createTestPost(t, db, author, "original", time.Now(), nil)

	resp := doJSON(t, app, "POST", postPath(post.ID)+"edit/",
		fiber.Map{"text": "hijacked"}, authCookie(t, srv, stranger))
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, postPath(post.ID), resp.Header.Get("Location"))

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, "original", stored.Text)

	// Same for the edit form page
	resp = doJSON(t, app, "GET", postPath(post.ID)+"edit/", nil, authCookie(t, srv, stranger))
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, postPath(post.ID), resp.Header.Get("Location"))
}

func TestDeletePost(t *testing.T) {
	app, srv, db := setupTestApp(t)

	author := createTestUser(t, db, "author")
	stranger := createTestUser(t, db, "stranger")
	post := createTestPost(t, db, author, "doomed", time.Now(), nil)

	resp := doJSON(t, app, "POST", postPath(post.ID)+"delete/", nil, authCookie(t, srv, stranger))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "POST", postPath(post.ID)+"delete/", nil, authCookie(t, srv, author))
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	resp = doJSON(t, app, "GET", postPath(post.ID), nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAddComment(t *testing.T) {
	app, srv, db := setupTestApp(t)

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")
	post := createTestPost(t, db, author, "post", time.Now(), nil)

	resp := doJSON(t, app, "POST", postPath(post.ID)+"comment/",
		fiber.Map{"text": "nice one"}, authCookie(t, srv, reader))
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, postPath(post.ID), resp.Header.Get("Location"))

	resp = doJSON(t, app, "GET", postPath(post.ID), nil, nil)
	body := decodeBody(t, resp)
	comments := body["comments"].([]any)
	require.Len(t, comments, 1)
	comment := comments[0].(map[string]any)
	assert.Equal(t, "nice one", comment["text"])
	commentAuthor := comment["author"].(map[string]any)
	assert.Equal(t, "reader", commentAuthor["username"])
}

func TestAddCommentToMissingPost(t *testing.T) {
	app, srv, db := setupTestApp(t)
	user := createTestUser(t, db, "alice")

	resp := doJSON(t, app, "POST", "/posts/999/comment/",
		fiber.Map{"text": "into the void"}, authCookie(t, srv, user))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
