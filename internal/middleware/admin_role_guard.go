package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// 管理APIはADMINだけ
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok || p.Role == "" {
				return unauthorizedJSON(c)
			}
			if !p.IsAdmin() {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}
			return next(c)
		}
	}
}
