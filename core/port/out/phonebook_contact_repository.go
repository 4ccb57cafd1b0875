package out

import (
	"context"

	"phonebook_server/core/domain"
)

// ContactRepository defines the outbound port for contact persistence.
//
// Implementations trim and check fields on write, enforce phone number
// uniqueness, and report failures as domain.ErrContactNotFound,
// *domain.ConstraintError or *domain.StorageError. An id that is malformed
// for the backend is reported as not found.
type ContactRepository interface {
	// Query operations
	Find(ctx context.Context, filter *domain.ContactFilter, opts *domain.FindOptions) ([]*domain.Contact, error)
	Count(ctx context.Context, filter *domain.ContactFilter) (int64, error)
	FindByID(ctx context.Context, id string) (*domain.Contact, error)

	// Write operations
	Insert(ctx context.Context, fields *domain.ContactFields) (*domain.Contact, error)
	UpdateByID(ctx context.Context, id string, fields *domain.ContactFields) (*domain.Contact, error)
	DeleteByID(ctx context.Context, id string) (*domain.Contact, error)

	// Ping checks connectivity for readiness probes.
	Ping(ctx context.Context) error
}
