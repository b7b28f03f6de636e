package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identium/auth-system/internal/core/domain"
)

// RequireRole enforces role-based access control on top of Auth. Admins
// pass every check; requiring domain.RoleUser admits any authenticated
// user.
func RequireRole(required domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if required == domain.RoleAdmin && domain.Role(role) != domain.RoleAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
