package persistence

import (
	"context"
	"fmt"
	"time"

	"phonebook_server/core/domain"
	"phonebook_server/core/port/out"
	"phonebook_server/pkg/cache"
	"phonebook_server/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

const generationKey = "contacts:generation"

// CachedContactAdapter wraps a ContactRepository with a Redis read-through
// cache. Every read key embeds a generation counter that each successful
// write increments, so a write invalidates all cached reads at once.
type CachedContactAdapter struct {
	delegate out.ContactRepository
	cache    *cache.RedisCache
	ttl      time.Duration
	requests *prometheus.CounterVec
}

// NewCachedContactAdapter creates a new cached contact adapter and registers
// its hit/miss counter with reg.
func NewCachedContactAdapter(delegate out.ContactRepository, redisCache *cache.RedisCache, ttl time.Duration, reg prometheus.Registerer) *CachedContactAdapter {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonebook_contact_cache_requests_total",
			Help: "Contact cache lookups by result",
		},
		[]string{"result"},
	)
	if reg != nil {
		reg.MustRegister(requests)
	}

	return &CachedContactAdapter{
		delegate: delegate,
		cache:    redisCache,
		ttl:      ttl,
		requests: requests,
	}
}

// =============================================================================
// Cached reads
// =============================================================================

func (a *CachedContactAdapter) Find(ctx context.Context, filter *domain.ContactFilter, opts *domain.FindOptions) ([]*domain.Contact, error) {
	if opts == nil {
		opts = &domain.FindOptions{}
	}
	search := ""
	if !filter.IsEmpty() {
		search = filter.Search
	}

	return readThrough(ctx, a, fmt.Sprintf("find:%q:%d:%d:%d", search, opts.Sort, opts.Skip, opts.Limit),
		func() ([]*domain.Contact, error) { return a.delegate.Find(ctx, filter, opts) })
}

func (a *CachedContactAdapter) Count(ctx context.Context, filter *domain.ContactFilter) (int64, error) {
	search := ""
	if !filter.IsEmpty() {
		search = filter.Search
	}

	return readThrough(ctx, a, fmt.Sprintf("count:%q", search),
		func() (int64, error) { return a.delegate.Count(ctx, filter) })
}

func (a *CachedContactAdapter) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	return readThrough(ctx, a, "id:"+id,
		func() (*domain.Contact, error) { return a.delegate.FindByID(ctx, id) })
}

// readThrough serves key from the cache or loads and stores it. Cache
// failures degrade to the delegate.
func readThrough[T any](ctx context.Context, a *CachedContactAdapter, key string, load func() (T, error)) (T, error) {
	gen, err := a.cache.Counter(ctx, generationKey)
	if err != nil {
		a.requests.WithLabelValues("error").Inc()
		logger.WithContext(ctx).WithError(err).Warn("contact cache unavailable")
		return load()
	}
	key = fmt.Sprintf("contacts:g%d:%s", gen, key)

	var cached T
	found, err := a.cache.GetJSON(ctx, key, &cached)
	switch {
	case err != nil:
		a.requests.WithLabelValues("error").Inc()
		logger.WithContext(ctx).WithError(err).Warn("contact cache read failed")
	case found:
		a.requests.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		a.requests.WithLabelValues("miss").Inc()
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if err := a.cache.SetJSON(ctx, key, v, a.ttl); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("contact cache write failed")
	}
	return v, nil
}

// =============================================================================
// Writes (invalidate)
// =============================================================================

func (a *CachedContactAdapter) Insert(ctx context.Context, fields *domain.ContactFields) (*domain.Contact, error) {
	c, err := a.delegate.Insert(ctx, fields)
	if err == nil {
		a.invalidate(ctx)
	}
	return c, err
}

func (a *CachedContactAdapter) UpdateByID(ctx context.Context, id string, fields *domain.ContactFields) (*domain.Contact, error) {
	c, err := a.delegate.UpdateByID(ctx, id, fields)
	if err == nil {
		a.invalidate(ctx)
	}
	return c, err
}

func (a *CachedContactAdapter) DeleteByID(ctx context.Context, id string) (*domain.Contact, error) {
	c, err := a.delegate.DeleteByID(ctx, id)
	if err == nil {
		a.invalidate(ctx)
	}
	return c, err
}

func (a *CachedContactAdapter) invalidate(ctx context.Context) {
	if _, err := a.cache.Increment(ctx, generationKey); err != nil {
		logger.WithContext(ctx).WithError(err).Error("contact cache invalidation failed")
	}
}

func (a *CachedContactAdapter) Ping(ctx context.Context) error {
	return a.delegate.Ping(ctx)
}

var _ out.ContactRepository = (*CachedContactAdapter)(nil)
