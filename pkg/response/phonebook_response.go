// Package response provides the JSON body shapes of the contact API.
package response

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// =============================================================================
// Body Shapes
// =============================================================================

// ErrorBody is the body of every single-message failure.
type ErrorBody struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// MessageBody acknowledges an operation without returning a resource.
type MessageBody struct {
	Message string `json:"message"`
}

// FieldError is one validation violation.
type FieldError struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// ValidationBody lists every validation violation of a request.
type ValidationBody struct {
	Errors []FieldError `json:"errors"`
}

// =============================================================================
// Response Builders
// =============================================================================

// OK returns a 200 response with data as the body.
func OK(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// Created returns a 201 created response.
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// Message returns a 200 response with a message body.
func Message(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(MessageBody{Message: message})
}

// Error returns an error response.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorBody{Error: message})
}

// ErrorWithCode returns an error response carrying a machine-readable code.
func ErrorWithCode(c *fiber.Ctx, status int, code, message string, details map[string]any) error {
	return c.Status(status).JSON(ErrorBody{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// ValidationErrors returns a 400 response listing every violation.
func ValidationErrors(c *fiber.Ctx, errs []FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(ValidationBody{Errors: errs})
}

// =============================================================================
// Pagination Helper
// =============================================================================

// GetPage reads the 1-based page query parameter. Absent, non-numeric, zero
// and negative values yield 1.
func GetPage(c *fiber.Ctx) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
