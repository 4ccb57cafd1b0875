package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrContactNotFound is returned by the gateway when no contact has the given id.
var ErrContactNotFound = errors.New("contact not found")

// ConstraintError is a write rejected by a storage rule (missing field,
// duplicate phone number). Fields maps each offending field to its message.
type ConstraintError struct {
	Fields map[string]string
}

func (e *ConstraintError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "Contact validation failed: " + strings.Join(parts, ", ")
}

// NewDuplicatePhoneError reports a phone number already held by another contact.
func NewDuplicatePhoneError() *ConstraintError {
	return &ConstraintError{Fields: map[string]string{
		FieldPhoneNumber: "Phone number already exists",
	}}
}

// IsConstraintError reports whether err is or wraps a *ConstraintError.
func IsConstraintError(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// StorageError wraps an unexpected failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err unless it already carries a domain meaning.
func NewStorageError(op string, err error) error {
	if err == nil || errors.Is(err, ErrContactNotFound) || IsConstraintError(err) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
