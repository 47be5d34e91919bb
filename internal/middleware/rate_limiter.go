package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// SubmissionsPerMinute is the sustained submission rate allowed per client IP.
const SubmissionsPerMinute = 10

// RateLimiter limits requests to SubmissionsPerMinute per minute per IP
// address for the routes it's applied to, with a burst of the same size.
func RateLimiter() echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		// In-memory store, suitable for single-instance deployments.
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(SubmissionsPerMinute) / 60),
			Burst:     SubmissionsPerMinute,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			// htmx does not swap 4xx responses; the trigger surfaces the alert.
			c.Response().Header().Set("HX-Trigger", `{"guestmap:alert":"Too many messages. Please try again later."}`)
			return c.String(http.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	}
	return middleware.RateLimiterWithConfig(config)
}
