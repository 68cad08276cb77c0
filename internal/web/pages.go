// Package web はサーバー側で描画するHTMLページ。
package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"storefront/internal/config"
	"storefront/internal/infra/session"
	"storefront/internal/middleware"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"
	"storefront/internal/validator"
)

const (
	signInPath = "/sign-in"

	csrfFormField  = "csrfmiddlewaretoken"
	csrfCookieName = "csrftoken"
	csrfContextKey = "csrf"
)

type SessionStore interface {
	Create(ctx context.Context, sess session.Session) (string, error)
	Get(ctx context.Context, id string) (session.Session, error)
	Delete(ctx context.Context, id string) error
	TTL() time.Duration
}

// ページが使うusecase一式
type Deps struct {
	Catalog  *usecase.CatalogUsecase
	Cart     *usecase.CartUsecase
	Checkout *usecase.CheckoutUsecase
	Payment  *usecase.PaymentUsecase
	Orders   *usecase.OrderUsecase
	Address  *usecase.AddressUsecase
	Profile  *usecase.ProfileUsecase
	Enquiry  *usecase.EnquiryUsecase
	Register *auth.RegisterUserUsecase
	Login    *auth.SessionLoginUsecase
}

type Pages struct {
	deps      Deps
	sessions  SessionStore
	validator validator.AuthValidator
	cfg       config.Config
}

func NewPages(cfg config.Config, deps Deps, sessions SessionStore, v validator.AuthValidator) *Pages {
	return &Pages{deps: deps, sessions: sessions, validator: v, cfg: cfg}
}

// テンプレートに渡す共通部分
type pageData struct {
	Title  string
	User   *session.Session
	CSRF   string
	Flash  string
	Error  string
	Fields map[string]string
	Form   map[string]string
	Data   interface{}
}

func (p *Pages) RegisterRoutes(e *echo.Echo) {
	csrf := echomw.CSRFWithConfig(echomw.CSRFConfig{
		TokenLookup:    "form:" + csrfFormField,
		CookieName:     csrfCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   p.cfg.CookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
		ContextKey:     csrfContextKey,
	})
	public := []echo.MiddlewareFunc{csrf, middleware.PageSession(p.sessions)}
	private := append(append([]echo.MiddlewareFunc{}, public...), middleware.LoginRequired(signInPath))

	e.GET("/", p.home, public...)
	e.POST("/", p.submitEnquiry, public...)
	e.GET("/about", p.static("about", "About"), public...)
	e.GET("/contact", p.static("contact", "Contact"), public...)
	e.GET("/products", p.products, private...)
	e.GET("/products/:category", p.category, public...)
	e.GET("/products/:category/:product", p.product, public...)

	e.GET("/cart", p.cart, private...)
	e.POST("/cart/add", p.addToCart, private...)
	e.POST("/cart/remove", p.removeFromCart, private...)
	e.GET("/checkout", p.checkoutForm, private...)
	e.POST("/checkout", p.placeOrder, private...)
	e.POST("/checkout/verify", p.verifyPayment, private...)

	e.GET("/sign-in", p.signInForm, public...)
	e.POST("/sign-in", p.signIn, public...)
	e.GET("/sign-up", p.signUpForm, public...)
	e.POST("/sign-up", p.signUp, public...)
	e.GET("/sign-out", p.signOut, public...)
	e.POST("/sign-out", p.signOut, public...)

	e.GET("/profile", p.profile, private...)
	e.GET("/profile/update", p.profileUpdateForm, private...)
	e.POST("/profile/update", p.profileUpdate, private...)
	e.GET("/profile/change-password", p.changePasswordForm, private...)
	e.POST("/profile/change-password", p.changePassword, private...)
	e.GET("/profile/address", p.addresses, private...)
	e.POST("/profile/address", p.createAddress, private...)
	e.POST("/profile/address/:id/delete", p.deleteAddress, private...)
	e.GET("/profile/order", p.orders, private...)
	e.GET("/profile/order/:id", p.order, private...)
	e.POST("/profile/order/:id/pay", p.payOrder, private...)
}

func (p *Pages) data(c echo.Context, title string, d interface{}) pageData {
	pd := pageData{Title: title, Data: d}
	if sess, ok := middleware.CurrentSession(c); ok {
		pd.User = &sess
	}
	pd.CSRF, _ = c.Get(csrfContextKey).(string)
	return pd
}

func (p *Pages) render(c echo.Context, code int, name string, pd pageData) error {
	return c.Render(code, name, pd)
}

// ログイン必須ページではLoginRequiredが先に弾く
func currentUserID(c echo.Context) int64 {
	if sess, ok := middleware.CurrentSession(c); ok {
		return sess.UserID
	}
	return 0
}

type errorPage struct {
	Status  int
	Message string
}

// usecaseのエラーをエラーページに
func (p *Pages) fail(c echo.Context, err error) error {
	status, msg := http.StatusInternalServerError, "Something went wrong."
	if he, ok := usecase.AsHTTPError(err); ok {
		status, msg = he.Status, he.Message
	} else {
		switch {
		case errors.Is(err, usecase.ErrNotFound):
			status, msg = http.StatusNotFound, "Page not found."
		case errors.Is(err, usecase.ErrValidation):
			status, msg = http.StatusBadRequest, "Invalid input."
		case errors.Is(err, usecase.ErrConflict):
			status, msg = http.StatusConflict, "This item is in use."
		case errors.Is(err, usecase.ErrForbidden):
			status, msg = http.StatusForbidden, "Forbidden."
		}
	}
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return p.render(c, status, "error", p.data(c, http.StatusText(status), errorPage{Status: status, Message: msg}))
}

// ValidationErrorならフィールドを返す
func fieldErrors(err error) (map[string]string, bool) {
	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields, true
	}
	return nil, false
}

// フォーム値をそのまま再表示用に
func formValues(c echo.Context, names ...string) map[string]string {
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[n] = c.FormValue(n)
	}
	return m
}

// 外部へのリダイレクトは許さない
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if u, err := url.Parse(next); err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return next
}

func (p *Pages) static(name, title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return p.render(c, http.StatusOK, name, p.data(c, title, nil))
	}
}
