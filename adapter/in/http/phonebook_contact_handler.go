package http

import (
	"phonebook_server/core/port/in"
	"phonebook_server/infra/middleware"
	"phonebook_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles contact requests.
type ContactHandler struct {
	contactService in.ContactService
	validator      *middleware.ContactValidator
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(contactService in.ContactService, validator *middleware.ContactValidator) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		validator:      validator,
	}
}

// Register registers contact routes under router.
func (h *ContactHandler) Register(router fiber.Router) {
	contacts := router.Group("/contacts")

	// Search must precede /:id
	contacts.Get("/search", h.SearchContacts)

	contacts.Get("/", h.ListContacts)
	contacts.Get("/:id", h.GetContact)
	contacts.Post("/", h.validator.Handler(), h.CreateContact)
	contacts.Put("/:id", h.validator.Handler(), h.UpdateContact)
	contacts.Delete("/:id", h.DeleteContact)
}

// =============================================================================
// Queries
// =============================================================================

// ListContacts returns one page of contacts, newest first.
func (h *ContactHandler) ListContacts(c *fiber.Ctx) error {
	page, err := h.contactService.ListContacts(c.UserContext(), response.GetPage(c))
	if err != nil {
		return ErrorResponse(c, err, fiber.StatusInternalServerError, "list contacts")
	}
	return response.OK(c, page)
}

// SearchContacts returns up to ten contacts matching the query.
func (h *ContactHandler) SearchContacts(c *fiber.Ctx) error {
	contacts, err := h.contactService.SearchContacts(c.UserContext(), c.Query("query"))
	if err != nil {
		return ErrorResponse(c, err, fiber.StatusInternalServerError, "search contacts")
	}
	return response.OK(c, contacts)
}

// GetContact returns a single contact.
func (h *ContactHandler) GetContact(c *fiber.Ctx) error {
	contact, err := h.contactService.GetContact(c.UserContext(), c.Params("id"))
	if err != nil {
		return ErrorResponse(c, err, fiber.StatusInternalServerError, "get contact")
	}
	return response.OK(c, contact)
}

// =============================================================================
// Commands
// =============================================================================

// CreateContact stores a validated contact.
func (h *ContactHandler) CreateContact(c *fiber.Ctx) error {
	req, ok := middleware.GetContactRequest(c)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	contact, err := h.contactService.CreateContact(c.UserContext(), req)
	if err != nil {
		return ErrorResponse(c, err, fiber.StatusBadRequest, "create contact")
	}
	return response.Created(c, contact)
}

// UpdateContact replaces the four editable fields of a contact.
func (h *ContactHandler) UpdateContact(c *fiber.Ctx) error {
	req, ok := middleware.GetContactRequest(c)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	contact, err := h.contactService.UpdateContact(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return ErrorResponse(c, err, fiber.StatusBadRequest, "update contact")
	}
	return response.OK(c, contact)
}

// DeleteContact removes a contact.
func (h *ContactHandler) DeleteContact(c *fiber.Ctx) error {
	if err := h.contactService.DeleteContact(c.UserContext(), c.Params("id")); err != nil {
		return ErrorResponse(c, err, fiber.StatusInternalServerError, "delete contact")
	}
	return response.Message(c, "Contact deleted successfully")
}
