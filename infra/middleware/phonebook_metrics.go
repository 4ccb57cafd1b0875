package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestObserver records finished requests.
type RequestObserver interface {
	ObserveHTTPRequest(method, route string, status int, d time.Duration)
}

// Metrics times every request except those to skipPath. A handler error is
// rendered through the app's ErrorHandler first, so the observed status is
// the one sent to the client.
func Metrics(observer RequestObserver, skipPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == skipPath {
			return c.Next()
		}

		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		observer.ObserveHTTPRequest(c.Method(), routeLabel(c), c.Response().StatusCode(), time.Since(start))
		return nil
	}
}

// UnmatchedRoute labels requests that no registered route matched, keeping
// arbitrary 404 paths out of the label set.
const UnmatchedRoute = "unmatched"

// routeLabel is the matched route pattern, or UnmatchedRoute when only a
// catch-all or middleware matched.
func routeLabel(c *fiber.Ctx) string {
	if r := c.Route(); r != nil {
		switch r.Path {
		case "", "/", "*", "/*":
		default:
			if len(r.Path) > 1 {
				return strings.TrimSuffix(r.Path, "/")
			}
			return r.Path
		}
	}
	return UnmatchedRoute
}
