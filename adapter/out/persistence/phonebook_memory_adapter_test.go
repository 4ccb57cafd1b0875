package persistence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"phonebook_server/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(first, last, phone string) *domain.ContactFields {
	return &domain.ContactFields{FirstName: first, LastName: last, PhoneNumber: phone, Address: "1 Main St"}
}

func TestMemoryContactAdapter_InsertTrimsAndChecks(t *testing.T) {
	repo := NewMemoryContactAdapter()
	ctx := context.Background()

	c, err := repo.Insert(ctx, &domain.ContactFields{
		FirstName: "  Ada ", LastName: "Lovelace", PhoneNumber: " 555-0100 ", Address: " London ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Ada", c.FirstName)
	assert.Equal(t, "555-0100", c.PhoneNumber)
	assert.Equal(t, "London", c.Address)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)

	_, err = repo.Insert(ctx, &domain.ContactFields{FirstName: "Ada", LastName: " ", PhoneNumber: "1", Address: ""})
	var ce *domain.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, map[string]string{
		domain.FieldLastName: "Last name is required",
		domain.FieldAddress:  "Address is required",
	}, ce.Fields)
}

func TestMemoryContactAdapter_UniquePhone(t *testing.T) {
	repo := NewMemoryContactAdapter()
	ctx := context.Background()

	a, err := repo.Insert(ctx, fields("Ada", "Lovelace", "555"))
	require.NoError(t, err)
	b, err := repo.Insert(ctx, fields("Alan", "Turing", "666"))
	require.NoError(t, err)

	_, err = repo.Insert(ctx, fields("Grace", "Hopper", " 555"))
	assert.True(t, domain.IsConstraintError(err))

	_, err = repo.UpdateByID(ctx, b.ID, fields("Alan", "Turing", "555"))
	assert.True(t, domain.IsConstraintError(err))

	_, err = repo.UpdateByID(ctx, a.ID, fields("Ada", "King", "555"))
	require.NoError(t, err, "keeping your own number is allowed")

	_, err = repo.UpdateByID(ctx, a.ID, fields("Ada", "King", "777"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, fields("Grace", "Hopper", "555"))
	require.NoError(t, err, "released number can be reused")
}

func TestMemoryContactAdapter_FindOrderingAndPaging(t *testing.T) {
	repo := NewMemoryContactAdapter()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := repo.Insert(ctx, fields(fmt.Sprintf("First%02d", i), "Last", fmt.Sprintf("555-%04d", i)))
		require.NoError(t, err)
	}

	page, err := repo.Find(ctx, nil, &domain.FindOptions{Sort: domain.SortNewestFirst, Skip: 10, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, "First04", page[0].FirstName)
	assert.Equal(t, "First00", page[4].FirstName)

	natural, err := repo.Find(ctx, nil, &domain.FindOptions{Limit: 3})
	require.NoError(t, err)
	require.Len(t, natural, 3)
	assert.Equal(t, "First00", natural[0].FirstName)

	beyond, err := repo.Find(ctx, nil, &domain.FindOptions{Skip: 100, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestMemoryContactAdapter_NewestFirstWithEqualTimestamps(t *testing.T) {
	repo := NewMemoryContactAdapter()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Insert(ctx, fields(fmt.Sprintf("N%d", i), "Last", fmt.Sprint(i)))
		require.NoError(t, err)
	}

	got, err := repo.Find(ctx, nil, &domain.FindOptions{Sort: domain.SortNewestFirst})
	require.NoError(t, err)
	assert.Equal(t, "N2", got[0].FirstName)
	assert.Equal(t, "N0", got[2].FirstName)
}

func TestMemoryContactAdapter_Search(t *testing.T) {
	repo := NewMemoryContactAdapter()
	ctx := context.Background()

	_, _ = repo.Insert(ctx, fields("Anna", "Smith", "111"))
	_, _ = repo.Insert(ctx, fields("Bob", "Johanson", "222"))
	_, _ = repo.Insert(ctx, fields("Carl", "Doe", "+1 (anna)"))
	_, _ = repo.Insert(ctx, fields("Dan", "A.B", "333"))

	got, err := repo.Find(ctx, &domain.ContactFilter{Search: "ANN"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Anna", got[0].FirstName)
	assert.Equal(t, "Carl", got[1].FirstName)

	n, err := repo.Count(ctx, &domain.ContactFilter{Search: "a.b"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "search text is literal")

	n, err = repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestMemoryContactAdapter_UpdateAndDelete(t *testing.T) {
	repo := NewMemoryContactAdapter()
	ctx := context.Background()

	created, err := repo.Insert(ctx, fields("Ada", "Lovelace", "555"))
	require.NoError(t, err)

	updated, err := repo.UpdateByID(ctx, created.ID, fields("Augusta", "King", "556"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Augusta", updated.FirstName)

	_, err = repo.UpdateByID(ctx, "missing", fields("Ada", "Lovelace", "1"))
	assert.ErrorIs(t, err, domain.ErrContactNotFound)

	deleted, err := repo.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", deleted.FirstName)

	_, err = repo.DeleteByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
	_, err = repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestMemoryContactAdapter_ReturnsCopies(t *testing.T) {
	repo := NewMemoryContactAdapter()
	ctx := context.Background()

	created, err := repo.Insert(ctx, fields("Ada", "Lovelace", "555"))
	require.NoError(t, err)
	created.FirstName = "Mutated"

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
}

func TestMemoryContactAdapter_ConcurrentInsertsKeepPhoneUnique(t *testing.T) {
	repo := NewMemoryContactAdapter()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Insert(ctx, fields("Ada", "Lovelace", "555")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func TestMemoryContactAdapter_CanceledContext(t *testing.T) {
	repo := NewMemoryContactAdapter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Find(ctx, nil, nil)
	var se *domain.StorageError
	assert.ErrorAs(t, err, &se)
	assert.Error(t, repo.Ping(ctx))
}
