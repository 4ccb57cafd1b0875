package middleware

import (
	"regexp"
	"strconv"
	"strings"

	"phonebook_server/core/domain"
	"phonebook_server/core/port/in"
	"phonebook_server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

const localsContactRequest = "contact_request"

var phonePattern = regexp.MustCompile(`^\+?[\d\s-]+$`)

// contactRule is one check of the contact pipeline. Rules run in order and
// every failure is reported.
type contactRule struct {
	field string
	tag   string
	msg   string
}

var contactRules = []contactRule{
	{domain.FieldFirstName, "required", "First name is required"},
	{domain.FieldFirstName, "min=2", "First name must be at least 2 characters long"},
	{domain.FieldLastName, "required", "Last name is required"},
	{domain.FieldLastName, "min=2", "Last name must be at least 2 characters long"},
	{domain.FieldPhoneNumber, "required", "Phone number is required"},
	{domain.FieldPhoneNumber, "phone", "Invalid phone number format"},
	{domain.FieldAddress, "required", "Address is required"},
}

// ContactValidator checks create and update bodies before they reach a handler.
type ContactValidator struct {
	validate *validator.Validate
}

// NewContactValidator creates a validator with the phone number rule registered.
func NewContactValidator() *ContactValidator {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &ContactValidator{validate: v}
}

// Handler trims the four contact fields and runs every rule against them.
// On success the trimmed request is stored for GetContactRequest; otherwise
// the request is answered with 400 and the full list of violations.
func (v *ContactValidator) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, ok := decodeObject(c.Body())
		if !ok {
			return response.ValidationErrors(c, []response.FieldError{{
				Type:     "field",
				Value:    "",
				Msg:      "Request body must be a JSON object",
				Path:     "body",
				Location: "body",
			}})
		}

		values := map[string]string{
			domain.FieldFirstName:   fieldString(body[domain.FieldFirstName]),
			domain.FieldLastName:    fieldString(body[domain.FieldLastName]),
			domain.FieldPhoneNumber: fieldString(body[domain.FieldPhoneNumber]),
			domain.FieldAddress:     fieldString(body[domain.FieldAddress]),
		}

		if errs := v.check(values); len(errs) > 0 {
			return response.ValidationErrors(c, errs)
		}

		c.Locals(localsContactRequest, &in.ContactRequest{
			FirstName:   values[domain.FieldFirstName],
			LastName:    values[domain.FieldLastName],
			PhoneNumber: values[domain.FieldPhoneNumber],
			Address:     values[domain.FieldAddress],
		})
		return c.Next()
	}
}

func (v *ContactValidator) check(values map[string]string) []response.FieldError {
	var errs []response.FieldError
	for _, rule := range contactRules {
		value := values[rule.field]
		if err := v.validate.Var(value, rule.tag); err != nil {
			errs = append(errs, response.FieldError{
				Type:     "field",
				Value:    value,
				Msg:      rule.msg,
				Path:     rule.field,
				Location: "body",
			})
		}
	}
	return errs
}

// GetContactRequest returns the request validated by ContactValidator.
func GetContactRequest(c *fiber.Ctx) (*in.ContactRequest, bool) {
	req, ok := c.Locals(localsContactRequest).(*in.ContactRequest)
	return req, ok
}

// decodeObject parses a JSON object body. An empty body is an empty object.
func decodeObject(raw []byte) (map[string]any, bool) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]any{}, true
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return nil, false
	}
	return body, true
}

// fieldString renders a decoded JSON value as the trimmed string the rules see.
func fieldString(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		s = ""
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err == nil {
			s = string(b)
		}
	}
	return strings.TrimSpace(s)
}
