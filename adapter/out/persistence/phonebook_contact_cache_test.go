package persistence

import (
	"context"
	"testing"
	"time"

	"phonebook_server/core/domain"
	"phonebook_server/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepository counts reads that reach the backend.
type countingRepository struct {
	*MemoryContactAdapter
	finds, counts, byID int
}

func (r *countingRepository) Find(ctx context.Context, filter *domain.ContactFilter, opts *domain.FindOptions) ([]*domain.Contact, error) {
	r.finds++
	return r.MemoryContactAdapter.Find(ctx, filter, opts)
}

func (r *countingRepository) Count(ctx context.Context, filter *domain.ContactFilter) (int64, error) {
	r.counts++
	return r.MemoryContactAdapter.Count(ctx, filter)
}

func (r *countingRepository) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	r.byID++
	return r.MemoryContactAdapter.FindByID(ctx, id)
}

func newCachedRepo(t *testing.T) (*CachedContactAdapter, *countingRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	backend := &countingRepository{MemoryContactAdapter: NewMemoryContactAdapter()}
	repo := NewCachedContactAdapter(backend, cache.NewRedisCache(client, "test:"), time.Minute, prometheus.NewRegistry())
	return repo, backend, mr
}

func TestCachedContactAdapter_ReadThrough(t *testing.T) {
	repo, backend, _ := newCachedRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, fields("Ada", "Lovelace", "555"))
	require.NoError(t, err)

	opts := &domain.FindOptions{Sort: domain.SortNewestFirst, Limit: 10}
	first, err := repo.Find(ctx, nil, opts)
	require.NoError(t, err)
	second, err := repo.Find(ctx, nil, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, backend.finds)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, first[0].CreatedAt.Equal(second[0].CreatedAt))

	assert.Equal(t, 1.0, testutil.ToFloat64(repo.requests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(repo.requests.WithLabelValues("miss")))
}

func TestCachedContactAdapter_WriteInvalidates(t *testing.T) {
	repo, backend, _ := newCachedRepo(t)
	ctx := context.Background()

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	created, err := repo.Insert(ctx, fields("Ada", "Lovelace", "555"))
	require.NoError(t, err)

	n, err = repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, backend.counts)

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)

	_, err = repo.UpdateByID(ctx, created.ID, fields("Augusta", "King", "555"))
	require.NoError(t, err)

	got, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", got.FirstName)

	_, err = repo.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	_, err = repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestCachedContactAdapter_FailedWriteKeepsCache(t *testing.T) {
	repo, _, mr := newCachedRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, fields("Ada", "Lovelace", "555"))
	require.NoError(t, err)
	gen, _ := mr.Get("test:" + generationKey)

	_, err = repo.Insert(ctx, fields("Grace", "Hopper", "555"))
	require.True(t, domain.IsConstraintError(err))
	genAfter, _ := mr.Get("test:" + generationKey)
	assert.Equal(t, gen, genAfter)
}

func TestCachedContactAdapter_SearchKeysAreDistinct(t *testing.T) {
	repo, _, _ := newCachedRepo(t)
	ctx := context.Background()

	_, _ = repo.Insert(ctx, fields("Ada", "Lovelace", "555"))
	_, _ = repo.Insert(ctx, fields("Bob", "Smith", "666"))

	ada, err := repo.Find(ctx, &domain.ContactFilter{Search: "ada"}, &domain.FindOptions{Limit: 10})
	require.NoError(t, err)
	bob, err := repo.Find(ctx, &domain.ContactFilter{Search: "bob"}, &domain.FindOptions{Limit: 10})
	require.NoError(t, err)

	require.Len(t, ada, 1)
	require.Len(t, bob, 1)
	assert.NotEqual(t, ada[0].ID, bob[0].ID)
}

func TestCachedContactAdapter_RedisDownFallsBack(t *testing.T) {
	repo, backend, mr := newCachedRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, fields("Ada", "Lovelace", "555"))
	require.NoError(t, err)
	mr.Close()

	got, err := repo.Find(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, backend.finds)
	assert.Equal(t, 1.0, testutil.ToFloat64(repo.requests.WithLabelValues("error")))
}
