package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// Cookieのcsrf_tokenとX-CSRF-Tokenヘッダが一致するか（Double Submit）
func CSRFDoubleSubmit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(CSRFCookieName)
			if err != nil || ck.Value == "" {
				return c.JSON(http.StatusForbidden, errorJSON("csrf token missing"))
			}

			header := c.Request().Header.Get(CSRFHeaderName)
			if header == "" {
				return c.JSON(http.StatusForbidden, errorJSON("csrf token missing"))
			}

			if subtle.ConstantTimeCompare([]byte(ck.Value), []byte(header)) != 1 {
				return c.JSON(http.StatusForbidden, errorJSON("csrf token mismatch"))
			}

			return next(c)
		}
	}
}
