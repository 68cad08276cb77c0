package handler

import (
	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// /api 配下のhandler一式
type Handlers struct {
	Catalog      *CatalogHandler
	Auth         *AuthHandler
	Cart         *CartHandler
	Checkout     *CheckoutHandler
	Order        *OrderHandler
	Address      *AddressHandler
	Profile      *ProfileHandler
	Enquiry      *EnquiryHandler
	AdminOrder   *AdminOrderHandler
	AdminProduct *AdminProductHandler
	AdminUser    *AdminUserHandler
}

// 公開APIと認証APIが同じprefixなので、認証はルート単位で付ける
func RegisterAPI(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	api := e.Group("/api")

	authMW := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	}

	h.Catalog.RegisterRoutes(api)
	h.Auth.RegisterRoutes(api, authMW...)
	h.Cart.RegisterRoutes(api, authMW...)
	h.Checkout.RegisterRoutes(api, authMW...)
	h.Order.RegisterRoutes(api, authMW...)
	h.Address.RegisterRoutes(api, authMW...)
	h.Profile.RegisterRoutes(api, authMW...)
	h.Enquiry.RegisterRoutes(api, middleware.OptionalAuthJWT(cfg))

	// ★ /api/admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := api.Group(
		"/admin",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.AdminRoleGuard(),
	)
	h.AdminOrder.RegisterRoutes(admin)
	h.AdminProduct.RegisterRoutes(admin)
	h.AdminUser.RegisterRoutes(admin)
}
