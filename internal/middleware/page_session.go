package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"storefront/internal/infra/session"
)

const CtxSessionKey = "session"

// ページ用のセッション取得
type SessionReader interface {
	Get(ctx context.Context, id string) (session.Session, error)
}

// sessionid Cookieがあればcontextに入れる。無くても通す
func PageSession(store SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(session.CookieName)
			if err == nil && ck.Value != "" {
				if sess, err := store.Get(c.Request().Context(), ck.Value); err == nil {
					c.Set(CtxSessionKey, sess)
					c.Set(CtxUserIDKey, sess.UserID)
				}
			}
			return next(c)
		}
	}
}

// 未ログインなら /sign-in?next=... へ
func LoginRequired(signInPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentSession(c); !ok {
				target := signInPath + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
				return c.Redirect(http.StatusFound, target)
			}
			return next(c)
		}
	}
}

func CurrentSession(c echo.Context) (session.Session, bool) {
	sess, ok := c.Get(CtxSessionKey).(session.Session)
	return sess, ok
}
