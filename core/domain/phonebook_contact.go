package domain

import (
	"strings"
	"time"
)

const (
	// ContactPageSize is the fixed page size of the contact listing.
	ContactPageSize = 10
	// SearchLimit caps the number of matches returned by a search.
	SearchLimit = 10
)

type Contact struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`

	// Timestamps
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContactFields are the four editable fields of a contact.
type ContactFields struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f ContactFields) Trimmed() ContactFields {
	return ContactFields{
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
		Address:     strings.TrimSpace(f.Address),
	}
}

// Check enforces the schema rules every stored contact must satisfy.
// It expects trimmed fields and returns a *ConstraintError listing every
// missing field.
func (f ContactFields) Check() error {
	violations := make(map[string]string)
	if f.FirstName == "" {
		violations[FieldFirstName] = "First name is required"
	}
	if f.LastName == "" {
		violations[FieldLastName] = "Last name is required"
	}
	if f.PhoneNumber == "" {
		violations[FieldPhoneNumber] = "Phone number is required"
	}
	if f.Address == "" {
		violations[FieldAddress] = "Address is required"
	}
	if len(violations) > 0 {
		return &ConstraintError{Fields: violations}
	}
	return nil
}

// Field names as they appear on the wire and in constraint errors.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldPhoneNumber = "phoneNumber"
	FieldAddress     = "address"
)

// ContactFilter narrows a find or count. A zero filter matches everything.
type ContactFilter struct {
	// Search is a case-insensitive substring matched against first name,
	// last name or phone number.
	Search string
}

// IsEmpty reports whether the filter matches every contact.
func (f *ContactFilter) IsEmpty() bool {
	return f == nil || f.Search == ""
}

type SortOrder int

const (
	SortNatural SortOrder = iota
	SortNewestFirst
)

type FindOptions struct {
	Sort  SortOrder
	Skip  int64
	Limit int64 // 0 means no limit
}

// ContactPage is one page of the contact listing.
type ContactPage struct {
	Contacts      []*Contact `json:"contacts"`
	CurrentPage   int        `json:"currentPage"`
	TotalPages    int        `json:"totalPages"`
	TotalContacts int64      `json:"totalContacts"`
}
