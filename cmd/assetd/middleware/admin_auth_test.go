package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newAuthEcho(token string) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/admin")
	g.Use(AdminAuthMiddleware(token))
	g.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	return e
}

func TestAdminAuthRejectsMissingToken(t *testing.T) {
	e := newAuthEcho("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuthRejectsWrongToken(t *testing.T) {
	e := newAuthEcho("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("X-Admin-Token", "guess")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminAuthAcceptsMatchingToken(t *testing.T) {
	e := newAuthEcho("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("X-Admin-Token", "secret")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAuthDisabledWithoutConfiguredToken(t *testing.T) {
	e := newAuthEcho("")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
