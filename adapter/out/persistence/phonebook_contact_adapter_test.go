package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"phonebook_server/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name      string
		filter    *domain.ContactFilter
		opts      *domain.FindOptions
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "page of newest",
			opts:      &domain.FindOptions{Sort: domain.SortNewestFirst, Skip: 10, Limit: 10},
			wantQuery: "SELECT " + contactColumns + " FROM contacts ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2",
			wantArgs:  []any{int64(10), int64(10)},
		},
		{
			name:   "search",
			filter: &domain.ContactFilter{Search: "ann"},
			opts:   &domain.FindOptions{Limit: 10},
			wantQuery: "SELECT " + contactColumns + " FROM contacts" +
				" WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR phone_number ILIKE $1 LIMIT $2",
			wantArgs: []any{"%ann%", int64(10)},
		},
		{
			name:      "everything",
			wantQuery: "SELECT " + contactColumns + " FROM contacts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildSelect(tt.filter, tt.opts)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%ann%`, likePattern("ann"))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}

func TestParseUUID(t *testing.T) {
	id := uuid.New()
	got, err := parseUUID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = parseUUID("not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestMapPgError(t *testing.T) {
	assert.ErrorIs(t, mapPgError("op", sql.ErrNoRows), domain.ErrContactNotFound)

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "contacts_phone_number_key"})
	var ce *domain.ConstraintError
	require.ErrorAs(t, mapPgError("op", dup), &ce)
	assert.Equal(t, "Phone number already exists", ce.Fields[domain.FieldPhoneNumber])

	var se *domain.StorageError
	require.ErrorAs(t, mapPgError("update contact", errors.New("conn refused")), &se)
	assert.Equal(t, "update contact", se.Op)
}
