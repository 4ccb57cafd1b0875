package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"phonebook_server/pkg/response"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidationApp() *fiber.App {
	app := fiber.New()
	app.Post("/contacts", NewContactValidator().Handler(), func(c *fiber.Ctx) error {
		req, ok := GetContactRequest(c)
		if !ok {
			return c.SendStatus(500)
		}
		return c.Status(201).JSON(req)
	})
	return app
}

func post(t *testing.T, app *fiber.App, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", "/contacts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func violations(t *testing.T, raw []byte) []response.FieldError {
	t.Helper()
	var body response.ValidationBody
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Errors
}

func messages(errs []response.FieldError) []string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Msg)
	}
	return msgs
}

func TestContactValidator_ValidBodyIsTrimmed(t *testing.T) {
	app := newValidationApp()

	status, raw := post(t, app, `{"firstName":"  Ada ","lastName":"Lovelace","phoneNumber":" +44 20-7946 ","address":" 12 St James Sq "}`)
	require.Equal(t, 201, status, string(raw))
	assert.JSONEq(t, `{"firstName":"Ada","lastName":"Lovelace","phoneNumber":"+44 20-7946","address":"12 St James Sq"}`, string(raw))
}

func TestContactValidator_CollectsEveryViolation(t *testing.T) {
	app := newValidationApp()

	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "empty object",
			body: `{}`,
			want: []string{
				"First name is required",
				"First name must be at least 2 characters long",
				"Last name is required",
				"Last name must be at least 2 characters long",
				"Phone number is required",
				"Invalid phone number format",
				"Address is required",
			},
		},
		{
			name: "short names and bad phone",
			body: `{"firstName":"A","lastName":" B ","phoneNumber":"555-ABC","address":"x"}`,
			want: []string{
				"First name must be at least 2 characters long",
				"Last name must be at least 2 characters long",
				"Invalid phone number format",
			},
		},
		{
			name: "non-ascii space inside phone",
			body: `{"firstName":"Ada","lastName":"Lovelace","phoneNumber":"555\u00a0123","address":"x"}`,
			want: []string{"Invalid phone number format"},
		},
		{
			name: "whitespace only address",
			body: `{"firstName":"Ada","lastName":"Lovelace","phoneNumber":"555","address":"   "}`,
			want: []string{"Address is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := post(t, app, tt.body)
			assert.Equal(t, 400, status)
			assert.Equal(t, tt.want, messages(violations(t, raw)))
		})
	}
}

func TestContactValidator_ErrorShape(t *testing.T) {
	app := newValidationApp()

	_, raw := post(t, app, `{"firstName":"A","lastName":"Lovelace","phoneNumber":"555","address":"x"}`)
	assert.JSONEq(t, `{"errors":[{"type":"field","value":"A","msg":"First name must be at least 2 characters long","path":"firstName","location":"body"}]}`, string(raw))
}

func TestContactValidator_NonObjectBody(t *testing.T) {
	app := newValidationApp()

	for _, body := range []string{`not json`, `[1,2]`, `null`} {
		status, raw := post(t, app, body)
		assert.Equal(t, 400, status, body)
		errs := violations(t, raw)
		require.Len(t, errs, 1)
		assert.Equal(t, "body", errs[0].Path)
	}
}

func TestContactValidator_EmptyBodyIsEmptyObject(t *testing.T) {
	app := newValidationApp()

	status, raw := post(t, app, ``)
	assert.Equal(t, 400, status)
	assert.Len(t, violations(t, raw), 7)
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "", fieldString(nil))
	assert.Equal(t, "abc", fieldString(" abc "))
	assert.Equal(t, "5551234", fieldString(float64(5551234)))
	assert.Equal(t, "true", fieldString(true))
}
