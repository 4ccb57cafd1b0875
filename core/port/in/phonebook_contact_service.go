package in

import (
	"context"

	"phonebook_server/core/domain"
)

type ContactService interface {
	ListContacts(ctx context.Context, page int) (*domain.ContactPage, error)
	SearchContacts(ctx context.Context, query string) ([]*domain.Contact, error)
	GetContact(ctx context.Context, id string) (*domain.Contact, error)
	CreateContact(ctx context.Context, req *ContactRequest) (*domain.Contact, error)
	UpdateContact(ctx context.Context, id string, req *ContactRequest) (*domain.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// ContactRequest carries the editable fields for create and full-replace update.
type ContactRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// Fields converts the request to the gateway's field set.
func (r *ContactRequest) Fields() *domain.ContactFields {
	return &domain.ContactFields{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
	}
}
