package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/identium/auth-system/internal/api/middleware"
	"github.com/identium/auth-system/internal/core/domain"
	"github.com/identium/auth-system/internal/core/ports"
	"github.com/identium/auth-system/internal/infrastructure/security/jwt"
)

type stubAuthService struct {
	user    *domain.User
	pair    ports.TokenPair
	err     error
	lastOp  string
	lastArg string
}

func (s *stubAuthService) Register(_ context.Context, username, _ string) (*domain.User, error) {
	s.lastOp, s.lastArg = "register", username
	return s.user, s.err
}

func (s *stubAuthService) Authenticate(_ context.Context, username, _ string) (*domain.User, ports.TokenPair, error) {
	s.lastOp, s.lastArg = "authenticate", username
	if s.err != nil {
		return nil, ports.TokenPair{}, s.err
	}
	return s.user, s.pair, nil
}

func (s *stubAuthService) RefreshTokens(_ context.Context, token string) (ports.TokenPair, error) {
	s.lastOp, s.lastArg = "refresh", token
	return s.pair, s.err
}

func (s *stubAuthService) GetCurrentUser(_ context.Context, token string) (*domain.User, error) {
	s.lastOp, s.lastArg = "me", token
	return s.user, s.err
}

func (s *stubAuthService) RequireRole(user *domain.User, required domain.Role) error {
	if user == nil || !user.Can(required) {
		return domain.ErrForbidden
	}
	return nil
}

type stubThrottle struct {
	blocked  bool
	err      error
	failures []string
	resets   []string
}

func (s *stubThrottle) Blocked(context.Context, string) (bool, error) { return s.blocked, s.err }

func (s *stubThrottle) RecordFailure(_ context.Context, username string) error {
	s.failures = append(s.failures, username)
	return nil
}

func (s *stubThrottle) Reset(_ context.Context, username string) error {
	s.resets = append(s.resets, username)
	return nil
}

type stubDispatcher struct {
	events []domain.UserEvent
}

func (s *stubDispatcher) Enqueue(event domain.UserEvent) {
	s.events = append(s.events, event)
}

func testUser(t *testing.T) *domain.User {
	t.Helper()
	name, err := domain.NewUsername("alice")
	if err != nil {
		t.Fatalf("username: %v", err)
	}
	hash, err := domain.ParseHashedPassword(strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return domain.NewUser(name, hash)
}

func newAuthHandlerFixture(svc *stubAuthService) (*AuthHandler, *stubThrottle, *stubDispatcher) {
	throttle := &stubThrottle{}
	dispatcher := &stubDispatcher{}
	tokens := jwt.NewService(jwt.Config{Secret: "test-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	h := NewAuthHandler(svc, tokens, throttle, dispatcher, zerolog.Nop())
	return h, throttle, dispatcher
}

func jsonRequest(method, path, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_Register(t *testing.T) {
	user := testUser(t)
	svc := &stubAuthService{user: user}
	h, _, dispatcher := newAuthHandlerFixture(svc)

	req, rec := jsonRequest(http.MethodPost, "/auth/register", `{"username":"alice","password":"Str0ngPass!"}`)
	c := newEcho().NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User == nil || resp.User.Username != "alice" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if resp.AccessToken != "" {
		t.Fatalf("registration must not issue tokens")
	}

	if len(dispatcher.events) != 1 || dispatcher.events[0].Type != domain.EventUserRegistered {
		t.Fatalf("expected a user.registered event, got %+v", dispatcher.events)
	}
	if dispatcher.events[0].UserID != user.ID {
		t.Fatalf("event must carry the new user id")
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	svc := &stubAuthService{}
	h, _, _ := newAuthHandlerFixture(svc)

	req, rec := jsonRequest(http.MethodPost, "/auth/register", `{"username":"alice","password":"short"}`)
	c := newEcho().NewContext(req, rec)

	err := h.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if svc.lastOp != "" {
		t.Fatalf("service must not be called on invalid payload")
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	svc := &stubAuthService{err: domain.ErrUsernameTaken}
	h, _, dispatcher := newAuthHandlerFixture(svc)

	req, rec := jsonRequest(http.MethodPost, "/auth/register", `{"username":"alice","password":"Str0ngPass!"}`)
	c := newEcho().NewContext(req, rec)

	if err := h.Register(c); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if len(dispatcher.events) != 0 {
		t.Fatalf("no event on failed registration")
	}
}

func TestAuthHandler_Login(t *testing.T) {
	user := testUser(t)
	svc := &stubAuthService{user: user, pair: ports.TokenPair{AccessToken: "acc", RefreshToken: "ref"}}
	h, throttle, dispatcher := newAuthHandlerFixture(svc)

	req, rec := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"Str0ngPass!"}`)
	c := newEcho().NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessToken != "acc" || resp.RefreshToken != "ref" || resp.TokenType != "Bearer" {
		t.Fatalf("unexpected token payload: %s", rec.Body.String())
	}

	if len(throttle.resets) != 1 || throttle.resets[0] != "alice" {
		t.Fatalf("successful login must reset the throttle, got %v", throttle.resets)
	}
	if len(dispatcher.events) != 1 || dispatcher.events[0].Type != domain.EventLoginSucceeded {
		t.Fatalf("expected login.succeeded event, got %+v", dispatcher.events)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	svc := &stubAuthService{err: domain.ErrInvalidCredentials}
	h, throttle, dispatcher := newAuthHandlerFixture(svc)

	req, rec := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`)
	c := newEcho().NewContext(req, rec)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(throttle.failures) != 1 || throttle.failures[0] != "alice" {
		t.Fatalf("failure must be recorded, got %v", throttle.failures)
	}
	if len(dispatcher.events) != 1 || dispatcher.events[0].Type != domain.EventLoginFailed {
		t.Fatalf("expected login.failed event, got %+v", dispatcher.events)
	}
	if dispatcher.events[0].UserID != "" {
		t.Fatalf("failed login event must not carry a user id")
	}
}

func TestAuthHandler_Login_Inactive(t *testing.T) {
	svc := &stubAuthService{err: domain.ErrUserNotActive}
	h, throttle, _ := newAuthHandlerFixture(svc)

	req, rec := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"Str0ngPass!"}`)
	c := newEcho().NewContext(req, rec)

	if err := h.Login(c); !errors.Is(err, domain.ErrUserNotActive) {
		t.Fatalf("expected ErrUserNotActive, got %v", err)
	}
	// Inactive accounts are not a credential failure; the throttle counter
	// stays untouched.
	if len(throttle.failures) != 0 {
		t.Fatalf("inactive login must not count as a throttle failure")
	}
}

func TestAuthHandler_Login_Throttled(t *testing.T) {
	svc := &stubAuthService{}
	h, throttle, _ := newAuthHandlerFixture(svc)
	throttle.blocked = true

	req, rec := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"Str0ngPass!"}`)
	c := newEcho().NewContext(req, rec)

	if err := h.Login(c); !errors.Is(err, domain.ErrTooManyLogins) {
		t.Fatalf("expected ErrTooManyLogins, got %v", err)
	}
	if svc.lastOp != "" {
		t.Fatalf("throttled request must not reach the auth service")
	}
}

func TestAuthHandler_Login_ThrottleFailsOpen(t *testing.T) {
	user := testUser(t)
	svc := &stubAuthService{user: user, pair: ports.TokenPair{AccessToken: "acc", RefreshToken: "ref"}}
	h, throttle, _ := newAuthHandlerFixture(svc)
	throttle.err = errors.New("redis down")

	req, rec := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"Str0ngPass!"}`)
	c := newEcho().NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("throttle outage must not block login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	svc := &stubAuthService{pair: ports.TokenPair{AccessToken: "acc2", RefreshToken: "ref2"}}
	h, _, _ := newAuthHandlerFixture(svc)

	req, rec := jsonRequest(http.MethodPost, "/auth/refresh", `{"refresh_token":"ref1"}`)
	c := newEcho().NewContext(req, rec)

	if err := h.Refresh(c); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if svc.lastArg != "ref1" {
		t.Fatalf("expected refresh with ref1, got %s", svc.lastArg)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessToken != "acc2" || resp.RefreshToken != "ref2" {
		t.Fatalf("unexpected rotated pair: %s", rec.Body.String())
	}
	if resp.User != nil {
		t.Fatalf("refresh response carries no user")
	}
}

func TestAuthHandler_Refresh_EmitsEvent(t *testing.T) {
	tokens := jwt.NewService(jwt.Config{Secret: "test-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	access, err := tokens.CreateAccessToken("user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	svc := &stubAuthService{pair: ports.TokenPair{AccessToken: access, RefreshToken: "ref2"}}
	h, _, dispatcher := newAuthHandlerFixture(svc)

	req, rec := jsonRequest(http.MethodPost, "/auth/refresh", `{"refresh_token":"ref1"}`)
	c := newEcho().NewContext(req, rec)

	if err := h.Refresh(c); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(dispatcher.events) != 1 || dispatcher.events[0].Type != domain.EventTokensRefreshed {
		t.Fatalf("expected tokens.refreshed event, got %+v", dispatcher.events)
	}
	if dispatcher.events[0].UserID != "user-1" {
		t.Fatalf("event must carry the token subject, got %q", dispatcher.events[0].UserID)
	}
}

func TestAuthHandler_Refresh_Invalid(t *testing.T) {
	svc := &stubAuthService{err: domain.ErrInvalidCredentials}
	h, _, _ := newAuthHandlerFixture(svc)

	req, rec := jsonRequest(http.MethodPost, "/auth/refresh", `{"refresh_token":"garbage"}`)
	c := newEcho().NewContext(req, rec)

	if err := h.Refresh(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	user := testUser(t)
	svc := &stubAuthService{user: user}
	h, _, _ := newAuthHandlerFixture(svc)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(req, rec)
	c.Set(middleware.CtxUserID, user.ID)
	c.Set(middleware.CtxRole, string(user.Role))
	c.Set(middleware.CtxAccessToken, "acc")

	if err := h.Me(c); err != nil {
		t.Fatalf("me: %v", err)
	}
	if svc.lastArg != "acc" {
		t.Fatalf("expected lookup by bearer token, got %s", svc.lastArg)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != user.ID || resp.Username != "alice" {
		t.Fatalf("unexpected profile: %s", rec.Body.String())
	}
	if resp.CreatedAt.After(time.Now()) {
		t.Fatalf("created_at in the future")
	}
}

func TestAuthHandler_Me_NoClaims(t *testing.T) {
	svc := &stubAuthService{}
	h, _, _ := newAuthHandlerFixture(svc)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(req, rec)

	err := h.Me(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without middleware claims, got %v", err)
	}
}
