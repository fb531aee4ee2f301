package server

import (
	"strconv"
	"time"

	"quill/internal/forms"
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

func (s *Server) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *Server) setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AuthCookie,
		Value:    token,
		Expires:  time.Now().Add(tokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

// LoginForm renders the login form context. The next parameter is echoed back
// so the POST can return the user where they came from.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"form": forms.LoginForm{},
		"next": c.Query("next"),
	})
}

// Signup handles user registration
func (s *Server) Signup(c *fiber.Ctx) error {
	var form forms.SignupForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if fields := forms.Validate(&form); fields != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(fields))
	}

	if existing, err := s.users.GetByEmail(c.UserContext(), form.Email); err != nil {
		return s.respondError(c, err)
	} else if existing != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(map[string]string{"email": "Email already registered"}))
	}

	if _, err := s.users.GetByUsername(c.UserContext(), form.Username); err == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(map[string]string{"username": "Username already taken"}))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: string(hash),
	}
	if err := s.users.Create(c.UserContext(), user); err != nil {
		return s.respondError(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}
	s.setAuthCookie(c, token)

	middleware.Logger.InfoContext(c.UserContext(), "User registered", "username", user.Username)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login authenticates a user and issues the session cookie. When the request
// carries a next parameter the user is redirected back there.
func (s *Server) Login(c *fiber.Ctx) error {
	var form forms.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if fields := forms.Validate(&form); fields != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(fields))
	}

	user, err := s.users.GetByUsername(c.UserContext(), form.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid username or password"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid username or password"))
	}

	token, err := s.generateToken(user)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}
	s.setAuthCookie(c, token)

	if next := c.Query("next"); next != "" && next[0] == '/' {
		return c.Redirect(next, fiber.StatusFound)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}
