package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminAuthMiddleware protects the upload endpoints
// Requires X-Admin-Token header to match the configured admin token
// When no token is configured the check is skipped (local development)
func AdminAuthMiddleware(expectedToken string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if expectedToken == "" {
				return next(c)
			}

			token := c.Request().Header.Get("X-Admin-Token")

			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "Upload endpoints require X-Admin-Token header",
					"hint":  "Set ADMIN_TOKEN env var and pass as X-Admin-Token header",
				})
			}

			if token != expectedToken {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"error": "Invalid admin token",
				})
			}

			return next(c)
		}
	}
}
