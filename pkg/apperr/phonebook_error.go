package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound            = "NOT_FOUND"
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodeDatabaseError       = "DATABASE_ERROR"
)

// AppError is an error that knows how it is rendered to a client.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// NotFound uses the "<resource> not found" wording clients already match on.
func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found", http.StatusNotFound)
}

// Constraint reports a write rejected by a storage rule. fields maps the
// offending field to its message.
func Constraint(message string, fields map[string]string) *AppError {
	e := New(CodeConstraintViolation, message, http.StatusBadRequest)
	if len(fields) > 0 {
		e.Details = make(map[string]any, len(fields))
		for field, msg := range fields {
			e.Details[field] = msg
		}
	}
	return e
}

// Storage surfaces a storage failure with its raw message. The status is
// chosen by the caller because read and write paths report it differently.
func Storage(err error, status int) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: err.Error(),
		Status:  status,
		Err:     err,
	}
}

// StatusOf returns the status carried by an AppError anywhere in err's
// chain, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
