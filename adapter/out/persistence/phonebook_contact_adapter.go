// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"phonebook_server/core/domain"
	"phonebook_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const pgUniqueViolation = "23505"

const contactSchema = `
CREATE TABLE IF NOT EXISTS contacts (
	id           UUID PRIMARY KEY,
	first_name   TEXT NOT NULL CHECK (first_name <> ''),
	last_name    TEXT NOT NULL CHECK (last_name <> ''),
	phone_number TEXT NOT NULL CHECK (phone_number <> ''),
	address      TEXT NOT NULL CHECK (address <> ''),
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL,
	CONSTRAINT contacts_phone_number_key UNIQUE (phone_number)
);
CREATE INDEX IF NOT EXISTS contacts_created_at_idx ON contacts (created_at DESC);
`

const contactColumns = `id, first_name, last_name, phone_number, address, created_at, updated_at`

// ContactAdapter implements out.ContactRepository using PostgreSQL.
type ContactAdapter struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewContactAdapter creates a new ContactAdapter.
func NewContactAdapter(db *sqlx.DB) *ContactAdapter {
	return &ContactAdapter{db: db, now: time.Now}
}

// EnsureSchema creates the contacts table and its indexes when missing.
func (a *ContactAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, contactSchema); err != nil {
		return fmt.Errorf("ensure contacts schema: %w", err)
	}
	return nil
}

// contactRow represents the database row for contacts.
type contactRow struct {
	ID          uuid.UUID `db:"id"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	PhoneNumber string    `db:"phone_number"`
	Address     string    `db:"address"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *contactRow) toDomain() *domain.Contact {
	return &domain.Contact{
		ID:          r.ID.String(),
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// =============================================================================
// Query Operations
// =============================================================================

func (a *ContactAdapter) Find(ctx context.Context, filter *domain.ContactFilter, opts *domain.FindOptions) ([]*domain.Contact, error) {
	query, args := buildSelect(filter, opts)

	var rows []contactRow
	if err := a.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, domain.NewStorageError("find contacts", err)
	}

	contacts := make([]*domain.Contact, 0, len(rows))
	for i := range rows {
		contacts = append(contacts, rows[i].toDomain())
	}
	return contacts, nil
}

func (a *ContactAdapter) Count(ctx context.Context, filter *domain.ContactFilter) (int64, error) {
	where, args := buildWhere(filter)

	var n int64
	if err := a.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM contacts"+where, args...); err != nil {
		return 0, domain.NewStorageError("count contacts", err)
	}
	return n, nil
}

func (a *ContactAdapter) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	var row contactRow
	err = a.db.GetContext(ctx, &row, "SELECT "+contactColumns+" FROM contacts WHERE id = $1", uid)
	if err != nil {
		return nil, mapPgError("find contact", err)
	}
	return row.toDomain(), nil
}

// =============================================================================
// Write Operations
// =============================================================================

func (a *ContactAdapter) Insert(ctx context.Context, fields *domain.ContactFields) (*domain.Contact, error) {
	f := fields.Trimmed()
	if err := f.Check(); err != nil {
		return nil, err
	}

	now := a.now().UTC().Truncate(time.Microsecond)
	query := `
		INSERT INTO contacts (` + contactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING ` + contactColumns

	var row contactRow
	err := a.db.GetContext(ctx, &row, query,
		uuid.New(), f.FirstName, f.LastName, f.PhoneNumber, f.Address, now)
	if err != nil {
		return nil, mapPgError("insert contact", err)
	}
	return row.toDomain(), nil
}

func (a *ContactAdapter) UpdateByID(ctx context.Context, id string, fields *domain.ContactFields) (*domain.Contact, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	f := fields.Trimmed()
	if err := f.Check(); err != nil {
		return nil, err
	}

	query := `
		UPDATE contacts
		SET first_name = $2, last_name = $3, phone_number = $4, address = $5, updated_at = $6
		WHERE id = $1
		RETURNING ` + contactColumns

	var row contactRow
	err = a.db.GetContext(ctx, &row, query,
		uid, f.FirstName, f.LastName, f.PhoneNumber, f.Address, a.now().UTC().Truncate(time.Microsecond))
	if err != nil {
		return nil, mapPgError("update contact", err)
	}
	return row.toDomain(), nil
}

func (a *ContactAdapter) DeleteByID(ctx context.Context, id string) (*domain.Contact, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	var row contactRow
	err = a.db.GetContext(ctx, &row, "DELETE FROM contacts WHERE id = $1 RETURNING "+contactColumns, uid)
	if err != nil {
		return nil, mapPgError("delete contact", err)
	}
	return row.toDomain(), nil
}

func (a *ContactAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// =============================================================================
// Helpers
// =============================================================================

func buildWhere(filter *domain.ContactFilter) (string, []any) {
	if filter.IsEmpty() {
		return "", nil
	}
	return ` WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR phone_number ILIKE $1`,
		[]any{likePattern(filter.Search)}
}

func buildSelect(filter *domain.ContactFilter, opts *domain.FindOptions) (string, []any) {
	where, args := buildWhere(filter)

	var sb strings.Builder
	sb.WriteString("SELECT " + contactColumns + " FROM contacts" + where)

	if opts == nil {
		return sb.String(), args
	}
	if opts.Sort == domain.SortNewestFirst {
		sb.WriteString(" ORDER BY created_at DESC, id DESC")
	}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Skip > 0 {
		args = append(args, opts.Skip)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}
	return sb.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches s literally anywhere in the column.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// parseUUID reports a malformed id as not found.
func parseUUID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrContactNotFound
	}
	return uid, nil
}

func mapPgError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrContactNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.NewDuplicatePhoneError()
	}
	return domain.NewStorageError(op, err)
}

var _ out.ContactRepository = (*ContactAdapter)(nil)
