package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quill/internal/config"
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
)

const testPassword = "password123"

func setupTestApp(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
	require.NoError(t, err, "Failed to migrate database")

	cfg := &config.Config{
		Port:      "8080",
		JWTSecret: "test-secret-key",
		Env:       "test",
	}
	middleware.InitMiddleware(cfg)

	srv := NewServerWithDeps(cfg, db, nil, nil)
	app := fiber.New()
	srv.SetupRoutes(app)

	return app, srv, db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
	require.NoError(t, db.Create(user).Error, "Failed to create user %s", username)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User, text string, createdAt time.Time, group *models.Group) *models.Post {
	t.Helper()

	post := &models.Post{
		Text:      text,
		AuthorID:  author.ID,
		CreatedAt: createdAt,
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, db.Create(post).Error, "Failed to create post %q", text)
	return post
}

// authCookie issues a session cookie for the given user, bypassing the login
// endpoint.
func authCookie(t *testing.T, srv *Server, user *models.User) *http.Cookie {
	t.Helper()

	token, err := srv.generateToken(user)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.AuthCookie, Value: token}
}

// doJSON performs a request with an optional JSON body and auth cookie.
func doJSON(t *testing.T, app *fiber.App, method, target string, body any, cookie *http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeBody unmarshals a JSON response body into a generic map.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), "invalid JSON body: %s", data)
	return out
}

// postPath builds the canonical post detail path.
func postPath(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

// pageItems pulls page.items out of a decoded listing view.
func pageItems(t *testing.T, body map[string]any) []any {
	t.Helper()

	page, ok := body["page"].(map[string]any)
	require.True(t, ok, "response has no page object: %v", body)
	items, ok := page["items"].([]any)
	require.True(t, ok, "page has no items: %v", page)
	return items
}
