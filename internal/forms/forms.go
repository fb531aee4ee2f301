// Package forms binds and validates incoming write requests. Validation
// failures surface as per-field messages so the caller can re-render the
// submitted form with them.
package forms

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// slug: lowercase letters, digits, hyphen, underscore
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
}

// PostForm is the create/edit post payload. The author never travels in the
// form; it is taken from the authenticated caller.
type PostForm struct {
	Text    string `json:"text" form:"text" validate:"required"`
	GroupID *uint  `json:"group_id" form:"group_id"`
}

// CommentForm is the add-comment payload. Author and target post come from
// the session and the route, never from the submitted body.
type CommentForm struct {
	Text string `json:"text" form:"text" validate:"required"`
}

// GroupForm is the create-group payload.
type GroupForm struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Slug        string `json:"slug" form:"slug" validate:"required,slug,max=64"`
	Description string `json:"description" form:"description"`
}

// SignupForm is the registration payload.
type SignupForm struct {
	Username string `json:"username" form:"username" validate:"required,alphanum,min=3,max=30"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}

// LoginForm is the login payload.
type LoginForm struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Validate checks a form and returns per-field messages, or nil when the
// form is valid.
func Validate(form any) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"form": err.Error()}
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fieldName(fe)] = message(fe)
	}
	return fields
}

// fieldName maps a struct field to its JSON name.
func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "alphanum":
		return "Only letters and digits are allowed"
	case "slug":
		return "Only lowercase letters, digits, '-' and '_' are allowed"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	default:
		return "Invalid value"
	}
}
