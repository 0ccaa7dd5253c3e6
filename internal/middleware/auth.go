package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminSecretAuth validates the X-Admin-Secret header against the configured
// admin secret. Used for ADMIN API endpoints. Returns 401 if authentication
// fails. The secret is injected at construction, never read from the
// environment inside the handler path.
func AdminSecretAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "admin secret not configured")
			}

			supplied := c.Request().Header.Get("X-Admin-Secret")
			if supplied == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing admin secret")
			}

			if !constantEqual(secret, supplied) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid admin secret")
			}

			return next(c)
		}
	}
}

// constantEqual provides constant-time string equality to avoid timing attacks.
func constantEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
