package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/identium/auth-system/internal/infrastructure/security/jwt"
)

func newTokenService(t *testing.T) *jwt.Service {
	t.Helper()
	return jwt.NewService(jwt.Config{Secret: "test-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour})
}

func invokeAuth(t *testing.T, tokens *jwt.Service, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(tokens)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := newTokenService(t)
	access, err := tokens.CreateAccessToken("user-1", "admin")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	c, err := invokeAuth(t, tokens, "Bearer "+access)
	if err != nil {
		t.Fatalf("expected request to pass, got %v", err)
	}
	if got := c.Get(CtxUserID); got != "user-1" {
		t.Fatalf("expected user_id user-1, got %v", got)
	}
	if got := c.Get(CtxRole); got != "admin" {
		t.Fatalf("expected role admin, got %v", got)
	}
	if got := c.Get(CtxAccessToken); got != access {
		t.Fatalf("raw token not propagated")
	}
}

func TestAuth_LowercaseScheme(t *testing.T) {
	tokens := newTokenService(t)
	access, err := tokens.CreateAccessToken("user-1", "user")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	if _, err := invokeAuth(t, tokens, "bearer "+access); err != nil {
		t.Fatalf("scheme match must be case-insensitive, got %v", err)
	}
}

func TestAuth_Rejections(t *testing.T) {
	tokens := newTokenService(t)

	cases := map[string]string{
		"missing header":   "",
		"no scheme":        "sometoken",
		"wrong scheme":     "Basic dXNlcjpwYXNz",
		"garbage token":    "Bearer not.a.jwt",
		"empty token":      "Bearer ",
		"tampered payload": "Bearer eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.bad",
	}
	for name, header := range cases {
		_, err := invokeAuth(t, tokens, header)
		httpErr, ok := err.(*echo.HTTPError)
		if !ok {
			t.Fatalf("%s: expected HTTPError, got %v", name, err)
		}
		if httpErr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, httpErr.Code)
		}
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	expired := jwt.NewService(jwt.Config{Secret: "test-secret", AccessTTL: -time.Minute, RefreshTTL: time.Hour})
	access, err := expired.CreateAccessToken("user-1", "user")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	_, err = invokeAuth(t, newTokenService(t), "Bearer "+access)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %v", err)
	}
}
