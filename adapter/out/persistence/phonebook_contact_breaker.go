package persistence

import (
	"context"
	"errors"

	"phonebook_server/core/domain"
	"phonebook_server/core/port/out"
	"phonebook_server/pkg/resilience"

	"github.com/sony/gobreaker"
)

// BreakerContactAdapter fails fast while the backend keeps failing.
// Not-found and constraint results are answers, not failures, and never
// trip the breaker.
type BreakerContactAdapter struct {
	delegate out.ContactRepository
	breaker  *gobreaker.CircuitBreaker
}

// NewBreakerContactAdapter wraps delegate with a breaker built from cfg.
func NewBreakerContactAdapter(delegate out.ContactRepository, cfg *resilience.CircuitBreakerConfig) *BreakerContactAdapter {
	if cfg == nil {
		cfg = resilience.DefaultCircuitBreakerConfig("contacts")
	}
	settings := *cfg
	settings.IsSuccessful = isBackendHealthy

	return &BreakerContactAdapter{
		delegate: delegate,
		breaker:  resilience.NewCircuitBreaker(&settings),
	}
}

func isBackendHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrContactNotFound) ||
		domain.IsConstraintError(err) ||
		errors.Is(err, context.Canceled)
}

func guard[T any](b *BreakerContactAdapter, op string, fn func() (T, error)) (T, error) {
	v, err := resilience.Execute(b.breaker, fn)
	if err != nil && resilience.IsRejected(err) {
		return v, domain.NewStorageError(op, err)
	}
	return v, err
}

func (b *BreakerContactAdapter) Find(ctx context.Context, filter *domain.ContactFilter, opts *domain.FindOptions) ([]*domain.Contact, error) {
	return guard(b, "find contacts", func() ([]*domain.Contact, error) {
		return b.delegate.Find(ctx, filter, opts)
	})
}

func (b *BreakerContactAdapter) Count(ctx context.Context, filter *domain.ContactFilter) (int64, error) {
	return guard(b, "count contacts", func() (int64, error) {
		return b.delegate.Count(ctx, filter)
	})
}

func (b *BreakerContactAdapter) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	return guard(b, "find contact", func() (*domain.Contact, error) {
		return b.delegate.FindByID(ctx, id)
	})
}

func (b *BreakerContactAdapter) Insert(ctx context.Context, fields *domain.ContactFields) (*domain.Contact, error) {
	return guard(b, "insert contact", func() (*domain.Contact, error) {
		return b.delegate.Insert(ctx, fields)
	})
}

func (b *BreakerContactAdapter) UpdateByID(ctx context.Context, id string, fields *domain.ContactFields) (*domain.Contact, error) {
	return guard(b, "update contact", func() (*domain.Contact, error) {
		return b.delegate.UpdateByID(ctx, id, fields)
	})
}

func (b *BreakerContactAdapter) DeleteByID(ctx context.Context, id string) (*domain.Contact, error) {
	return guard(b, "delete contact", func() (*domain.Contact, error) {
		return b.delegate.DeleteByID(ctx, id)
	})
}

// Ping bypasses the breaker so readiness reflects the backend itself.
func (b *BreakerContactAdapter) Ping(ctx context.Context) error {
	return b.delegate.Ping(ctx)
}

// State reports the breaker state for diagnostics.
func (b *BreakerContactAdapter) State() gobreaker.State {
	return b.breaker.State()
}

var _ out.ContactRepository = (*BreakerContactAdapter)(nil)
