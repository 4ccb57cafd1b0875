package persistence

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"phonebook_server/core/domain"
	"phonebook_server/core/port/out"

	"github.com/google/uuid"
)

// MemoryContactAdapter implements out.ContactRepository in process memory.
// It is used for local runs and tests.
type MemoryContactAdapter struct {
	mu       sync.RWMutex
	contacts map[string]*memoryContact
	phones   map[string]string // phone number -> id
	seq      uint64
	now      func() time.Time
}

type memoryContact struct {
	contact domain.Contact
	seq     uint64
}

// NewMemoryContactAdapter creates an empty in-memory store.
func NewMemoryContactAdapter() *MemoryContactAdapter {
	return &MemoryContactAdapter{
		contacts: make(map[string]*memoryContact),
		phones:   make(map[string]string),
		now:      time.Now,
	}
}

func (a *MemoryContactAdapter) Find(ctx context.Context, filter *domain.ContactFilter, opts *domain.FindOptions) ([]*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("find contacts", err)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	matched := a.matching(filter)
	if opts == nil {
		opts = &domain.FindOptions{}
	}

	if opts.Sort == domain.SortNewestFirst {
		sort.Slice(matched, func(i, j int) bool {
			ci, cj := matched[i], matched[j]
			if !ci.contact.CreatedAt.Equal(cj.contact.CreatedAt) {
				return ci.contact.CreatedAt.After(cj.contact.CreatedAt)
			}
			return ci.seq > cj.seq
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(matched)) {
			matched = matched[:0]
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int64(len(matched)) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	result := make([]*domain.Contact, 0, len(matched))
	for _, m := range matched {
		c := m.contact
		result = append(result, &c)
	}
	return result, nil
}

func (a *MemoryContactAdapter) Count(ctx context.Context, filter *domain.ContactFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewStorageError("count contacts", err)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	return int64(len(a.matching(filter))), nil
}

func (a *MemoryContactAdapter) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("find contact", err)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	m, ok := a.contacts[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	c := m.contact
	return &c, nil
}

func (a *MemoryContactAdapter) Insert(ctx context.Context, fields *domain.ContactFields) (*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("insert contact", err)
	}

	f := fields.Trimmed()
	if err := f.Check(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, taken := a.phones[f.PhoneNumber]; taken {
		return nil, domain.NewDuplicatePhoneError()
	}

	now := a.now().UTC()
	a.seq++
	m := &memoryContact{
		contact: domain.Contact{
			ID:          uuid.NewString(),
			FirstName:   f.FirstName,
			LastName:    f.LastName,
			PhoneNumber: f.PhoneNumber,
			Address:     f.Address,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		seq: a.seq,
	}
	a.contacts[m.contact.ID] = m
	a.phones[f.PhoneNumber] = m.contact.ID

	c := m.contact
	return &c, nil
}

func (a *MemoryContactAdapter) UpdateByID(ctx context.Context, id string, fields *domain.ContactFields) (*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("update contact", err)
	}

	f := fields.Trimmed()
	if err := f.Check(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	m, ok := a.contacts[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	if owner, taken := a.phones[f.PhoneNumber]; taken && owner != id {
		return nil, domain.NewDuplicatePhoneError()
	}

	delete(a.phones, m.contact.PhoneNumber)
	a.phones[f.PhoneNumber] = id

	m.contact.FirstName = f.FirstName
	m.contact.LastName = f.LastName
	m.contact.PhoneNumber = f.PhoneNumber
	m.contact.Address = f.Address
	m.contact.UpdatedAt = a.now().UTC()

	c := m.contact
	return &c, nil
}

func (a *MemoryContactAdapter) DeleteByID(ctx context.Context, id string) (*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("delete contact", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	m, ok := a.contacts[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	delete(a.contacts, id)
	delete(a.phones, m.contact.PhoneNumber)

	c := m.contact
	return &c, nil
}

func (a *MemoryContactAdapter) Ping(ctx context.Context) error {
	return ctx.Err()
}

// matching returns the contacts selected by filter in insertion order.
// Callers hold the lock.
func (a *MemoryContactAdapter) matching(filter *domain.ContactFilter) []*memoryContact {
	needle := ""
	if !filter.IsEmpty() {
		needle = strings.ToLower(filter.Search)
	}

	matched := make([]*memoryContact, 0, len(a.contacts))
	for _, m := range a.contacts {
		if needle == "" ||
			strings.Contains(strings.ToLower(m.contact.FirstName), needle) ||
			strings.Contains(strings.ToLower(m.contact.LastName), needle) ||
			strings.Contains(strings.ToLower(m.contact.PhoneNumber), needle) {
			matched = append(matched, m)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	return matched
}

var _ out.ContactRepository = (*MemoryContactAdapter)(nil)
