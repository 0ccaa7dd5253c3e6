package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/keyserver/internal/middleware"
)

func TestAdminSecretAuth(t *testing.T) {
	e := echo.New()
	e.Use(middleware.AdminSecretAuth("s3cret"))
	e.GET("/keys", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	tests := []struct {
		name   string
		secret string
		want   int
	}{
		{"valid secret", "s3cret", http.StatusOK},
		{"wrong secret", "guess", http.StatusUnauthorized},
		{"missing secret", "", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/keys", nil)
			if tc.secret != "" {
				req.Header.Set("X-Admin-Secret", tc.secret)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestAdminSecretAuth_Unconfigured(t *testing.T) {
	e := echo.New()
	e.Use(middleware.AdminSecretAuth(""))
	e.GET("/keys", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/keys", nil)
	req.Header.Set("X-Admin-Secret", "anything")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
