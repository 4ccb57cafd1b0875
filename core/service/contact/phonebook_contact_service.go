package contact

import (
	"context"
	"math"
	"time"

	"phonebook_server/core/domain"
	"phonebook_server/core/port/in"
	"phonebook_server/core/port/out"
	"phonebook_server/pkg/logger"
)

// Operation labels recorded on the database duration histogram.
const (
	OpFindContacts  = "find contacts"
	OpSearchContact = "search contact"
	OpGetContact    = "get contact"
	OpAddContact    = "add contacts"
	OpEditContact   = "edit contact"
	OpDeleteContact = "delete contact"
)

// OperationObserver receives the wall-clock duration of each gateway interaction.
type OperationObserver interface {
	ObserveDatabaseOperation(operation string, d time.Duration)
}

type Service struct {
	contactRepo out.ContactRepository
	observer    OperationObserver
}

var _ in.ContactService = (*Service)(nil)

func NewService(contactRepo out.ContactRepository, observer OperationObserver) *Service {
	return &Service{
		contactRepo: contactRepo,
		observer:    observer,
	}
}

// timed runs fn and records its duration under op, whether or not it failed.
func (s *Service) timed(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	if s.observer != nil {
		s.observer.ObserveDatabaseOperation(op, elapsed)
	}
	if err != nil {
		logger.WithContext(ctx).WithError(err).WithDuration(elapsed).Debug("%s failed", op)
	}
	return err
}

const maxListSkip = math.MaxInt64 - domain.ContactPageSize

// ListContacts returns one page of contacts, newest first. Pages below 1 are
// treated as page 1; pages past the end come back empty with the same totals.
func (s *Service) ListContacts(ctx context.Context, page int) (*domain.ContactPage, error) {
	if page < 1 {
		page = 1
	}

	var (
		contacts []*domain.Contact
		total    int64
	)
	err := s.timed(ctx, OpFindContacts, func() error {
		var err error
		// Offsets past int64 cannot hold data; only the totals are needed.
		if int64(page-1) <= maxListSkip/domain.ContactPageSize {
			contacts, err = s.contactRepo.Find(ctx, nil, &domain.FindOptions{
				Sort:  domain.SortNewestFirst,
				Skip:  int64(page-1) * domain.ContactPageSize,
				Limit: domain.ContactPageSize,
			})
			if err != nil {
				return err
			}
		}
		total, err = s.contactRepo.Count(ctx, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	if contacts == nil {
		contacts = []*domain.Contact{}
	}

	return &domain.ContactPage{
		Contacts:      contacts,
		CurrentPage:   page,
		TotalPages:    int((total + domain.ContactPageSize - 1) / domain.ContactPageSize),
		TotalContacts: total,
	}, nil
}

// SearchContacts returns at most domain.SearchLimit contacts whose first name,
// last name or phone number contains query, ignoring case.
func (s *Service) SearchContacts(ctx context.Context, query string) ([]*domain.Contact, error) {
	var contacts []*domain.Contact
	err := s.timed(ctx, OpSearchContact, func() error {
		var err error
		contacts, err = s.contactRepo.Find(ctx, &domain.ContactFilter{Search: query}, &domain.FindOptions{
			Sort:  domain.SortNatural,
			Limit: domain.SearchLimit,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if contacts == nil {
		contacts = []*domain.Contact{}
	}
	return contacts, nil
}

func (s *Service) GetContact(ctx context.Context, id string) (*domain.Contact, error) {
	var contact *domain.Contact
	err := s.timed(ctx, OpGetContact, func() error {
		var err error
		contact, err = s.contactRepo.FindByID(ctx, id)
		return err
	})
	return contact, err
}

func (s *Service) CreateContact(ctx context.Context, req *in.ContactRequest) (*domain.Contact, error) {
	var contact *domain.Contact
	err := s.timed(ctx, OpAddContact, func() error {
		var err error
		contact, err = s.contactRepo.Insert(ctx, req.Fields())
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).WithField("contact_id", contact.ID).Info("Contact created")
	return contact, nil
}

// UpdateContact replaces all four editable fields of the contact.
func (s *Service) UpdateContact(ctx context.Context, id string, req *in.ContactRequest) (*domain.Contact, error) {
	var contact *domain.Contact
	err := s.timed(ctx, OpEditContact, func() error {
		var err error
		contact, err = s.contactRepo.UpdateByID(ctx, id, req.Fields())
		return err
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Service) DeleteContact(ctx context.Context, id string) error {
	err := s.timed(ctx, OpDeleteContact, func() error {
		_, err := s.contactRepo.DeleteByID(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	logger.WithContext(ctx).WithField("contact_id", id).Info("Contact deleted")
	return nil
}
