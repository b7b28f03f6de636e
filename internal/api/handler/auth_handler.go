package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/identium/auth-system/internal/api/metrics"
	"github.com/identium/auth-system/internal/core/domain"
	"github.com/identium/auth-system/internal/core/ports"
)

// LoginThrottle gates authentication attempts before the core runs.
// Implementations fail open: a throttle outage must not lock everyone out.
type LoginThrottle interface {
	Blocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// EventDispatcher is the interface the handlers use to enqueue security
// events without blocking the request.
type EventDispatcher interface {
	Enqueue(event domain.UserEvent)
}

// AuthHandler exposes registration, login, token refresh and the
// current-user endpoint.
type AuthHandler struct {
	auth       ports.AuthService
	tokens     ports.TokenService
	throttle   LoginThrottle
	dispatcher EventDispatcher
	log        zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, tokens ports.TokenService, throttle LoginThrottle, dispatcher EventDispatcher, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens, throttle: throttle, dispatcher: dispatcher, log: log}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type authResponse struct {
	User         *userResponse `json:"user,omitempty"`
	AccessToken  string        `json:"access_token,omitempty"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	TokenType    string        `json:"token_type,omitempty"`
}

func toUserResponse(u *domain.User) *userResponse {
	return &userResponse{
		ID:        u.ID,
		Username:  u.Username.String(),
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.auth.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	h.dispatcher.Enqueue(domain.UserEvent{
		UserID:   user.ID,
		Username: user.Username.String(),
		Type:     domain.EventUserRegistered,
		Source:   c.RealIP(),
	})

	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(user)})
}

// Login authenticates a user and returns an access/refresh token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	blocked, err := h.throttle.Blocked(ctx, req.Username)
	if err != nil {
		h.log.Warn().Err(err).Msg("login throttle unavailable, failing open")
	} else if blocked {
		metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
		return domain.ErrTooManyLogins
	}

	user, pair, err := h.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginResult(err)).Inc()
		if errors.Is(err, domain.ErrInvalidCredentials) {
			if recordErr := h.throttle.RecordFailure(ctx, req.Username); recordErr != nil {
				h.log.Warn().Err(recordErr).Msg("failed to record login failure")
			}
			h.dispatcher.Enqueue(domain.UserEvent{
				Username: req.Username,
				Type:     domain.EventLoginFailed,
				Source:   c.RealIP(),
			})
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	if resetErr := h.throttle.Reset(ctx, req.Username); resetErr != nil {
		h.log.Warn().Err(resetErr).Msg("failed to reset login throttle")
	}
	h.dispatcher.Enqueue(domain.UserEvent{
		UserID:   user.ID,
		Username: user.Username.String(),
		Type:     domain.EventLoginSucceeded,
		Source:   c.RealIP(),
	})

	return c.JSON(http.StatusOK, authResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	})
}

// Refresh rotates both tokens for a valid refresh token.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.auth.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("invalid").Inc()
		return err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	if claims := h.tokens.VerifyToken(pair.AccessToken); claims != nil {
		h.dispatcher.Enqueue(domain.UserEvent{
			UserID: claims.Subject,
			Type:   domain.EventTokensRefreshed,
			Source: c.RealIP(),
		})
	}
	return c.JSON(http.StatusOK, authResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	})
}

// Me returns the profile of the authenticated user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	token, err := ctxAccessToken(c)
	if err != nil {
		return err
	}

	user, err := h.auth.GetCurrentUser(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUserNotActive):
		return "inactive"
	default:
		return "error"
	}
}

func registerResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		return "conflict"
	default:
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return "invalid"
		}
		return "error"
	}
}
