package middleware

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/repository"
)

// JWTのtvがDBのtoken_versionと違えば401（強制ログアウト・パスワード変更後の古いJWT）
// 停止ユーザーも同じく401
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return unauthorizedJSON(c)
			}

			user, err := userRepo.FindByID(c.Request().Context(), p.UserID)
			if err != nil || user == nil {
				return unauthorizedJSON(c)
			}
			if !user.IsActive || user.TokenVersion != p.TokenVersion {
				return unauthorizedJSON(c)
			}

			//roleはDBの最新値で上書き
			setPrincipal(c, Principal{UserID: user.ID, Role: user.Role, TokenVersion: user.TokenVersion})
			return next(c)
		}
	}
}
