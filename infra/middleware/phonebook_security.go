package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// SecurityHeaders adds security headers to all responses
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Prevent MIME type sniffing
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")

		// Prevent clickjacking
		c.Set(fiber.HeaderXFrameOptions, "DENY")

		c.Set(fiber.HeaderReferrerPolicy, "strict-origin-when-cross-origin")

		// The API serves JSON only
		c.Set(fiber.HeaderContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")

		return c.Next()
	}
}
