package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/identium/auth-system/internal/core/domain"
)

func invokeRequireRole(t *testing.T, required domain.Role, role string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(CtxRole, role)
	}

	handler := RequireRole(required)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, handler(c)
}

func TestRequireRole_AdminGate(t *testing.T) {
	rec, err := invokeRequireRole(t, domain.RoleAdmin, "admin")
	if err != nil {
		t.Fatalf("admin must pass the admin gate: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec, err = invokeRequireRole(t, domain.RoleAdmin, "user")
	if err != nil {
		t.Fatalf("forbidden response is written, not returned: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
}

func TestRequireRole_UserGate(t *testing.T) {
	for _, role := range []string{"user", "admin"} {
		rec, err := invokeRequireRole(t, domain.RoleUser, role)
		if err != nil {
			t.Fatalf("%s must pass the user gate: %v", role, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", role, rec.Code)
		}
	}
}

func TestRequireRole_MissingClaims(t *testing.T) {
	_, err := invokeRequireRole(t, domain.RoleUser, "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %v", err)
	}
}
