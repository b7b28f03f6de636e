package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identium/auth-system/internal/api/middleware"
)

// ctxIdentity extracts the claims injected by the Auth middleware and
// fast-fails before any service call: both values must be present, their
// absence means the middleware did not run on this route.
func ctxIdentity(c echo.Context) (userID, role string, err error) {
	userID, _ = c.Get(middleware.CtxUserID).(string)
	role, _ = c.Get(middleware.CtxRole).(string)
	if userID == "" || role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, role, nil
}

// ctxAccessToken returns the raw bearer token stored by the Auth middleware.
func ctxAccessToken(c echo.Context) (string, error) {
	token, _ := c.Get(middleware.CtxAccessToken).(string)
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return token, nil
}
