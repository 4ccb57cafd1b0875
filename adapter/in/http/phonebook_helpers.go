package http

import (
	"errors"

	"phonebook_server/core/domain"
	"phonebook_server/pkg/apperr"
	"phonebook_server/pkg/logger"
	"phonebook_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// toAppError classifies a service error. fallback is the status used for
// constraint and storage failures, which differs per operation.
func toAppError(err error, fallback int) *apperr.AppError {
	var ce *domain.ConstraintError
	switch {
	case errors.Is(err, domain.ErrContactNotFound):
		return apperr.NotFound("Contact")
	case errors.As(err, &ce):
		appErr := apperr.Constraint(ce.Error(), ce.Fields)
		appErr.Status = fallback
		return appErr
	default:
		return apperr.Storage(err, fallback)
	}
}

// ErrorResponse sends the {error: message} body for a failed contact operation.
func ErrorResponse(c *fiber.Ctx, err error, fallback int, operation string) error {
	appErr := toAppError(err, fallback)

	log := logger.WithContext(c.UserContext()).WithError(err).WithField("operation", operation)
	if appErr.Status >= 500 {
		log.Error("%s failed", operation)
	} else {
		log.Debug("%s rejected", operation)
	}

	return response.Error(c, appErr.Status, appErr.Message)
}
