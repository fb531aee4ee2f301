// Package middleware provides authentication, logging and rate limiting
// middleware for the application.
package middleware

import (
	"net/url"
	"strconv"
	"strings"

	"quill/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// AuthCookie is the cookie carrying the session token.
const AuthCookie = "auth_token"

// LoginPath is where unauthenticated requests to protected routes are sent.
const LoginPath = "/auth/login/"

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// tokenFromRequest extracts the session token from the auth cookie or a
// "Bearer <token>" Authorization header.
func tokenFromRequest(c *fiber.Ctx) string {
	if cookie := c.Cookies(AuthCookie); cookie != "" {
		return cookie
	}

	authHeader := c.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// ParseToken validates a token string and returns the user ID and username
// embedded in its claims.
func ParseToken(tokenString string) (uint, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", jwt.ErrTokenInvalidClaims
	}

	// User ID travels in the "sub" claim (RFC 7519 subject)
	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, "", jwt.ErrTokenInvalidSubject
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, "", jwt.ErrTokenInvalidSubject
	}

	username, _ := claims["username"].(string)
	return uint(userID), username, nil
}

// RedirectToLogin sends the client to the login endpoint with a next
// parameter preserving the original target.
func RedirectToLogin(c *fiber.Ctx) error {
	next := url.QueryEscape(c.OriginalURL())
	return c.Redirect(LoginPath+"?next="+next, fiber.StatusFound)
}

// AuthRequired is a middleware that enforces authentication for protected
// routes. Unauthenticated requests are redirected to the login endpoint
// rather than rejected with an error.
func AuthRequired(c *fiber.Ctx) error {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		return RedirectToLogin(c)
	}

	userID, username, err := ParseToken(tokenString)
	if err != nil {
		return RedirectToLogin(c)
	}

	c.Locals("userID", userID)
	c.Locals("username", username)
	return c.Next()
}

// OptionalAuth populates the user locals when a valid token is present and
// continues unauthenticated otherwise. Used on views whose content varies
// with the viewer, like the profile follow flag.
func OptionalAuth(c *fiber.Ctx) error {
	if tokenString := tokenFromRequest(c); tokenString != "" {
		if userID, username, err := ParseToken(tokenString); err == nil {
			c.Locals("userID", userID)
			c.Locals("username", username)
		}
	}
	return c.Next()
}
