package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 問い合わせ（ログイン任意）
type EnquiryHandler struct {
	uc *usecase.EnquiryUsecase
}

func NewEnquiryHandler(uc *usecase.EnquiryUsecase) *EnquiryHandler {
	return &EnquiryHandler{uc: uc}
}

// optionalAuthはトークンがあればuser_idを入れるだけ
func (h *EnquiryHandler) RegisterRoutes(g *echo.Group, optionalAuth ...echo.MiddlewareFunc) {
	g.POST("/enquiries", h.submit, optionalAuth...)
}

func (h *EnquiryHandler) submit(c echo.Context) error {
	var in usecase.EnquiryInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}

	var userID *int64
	if id, ok := getUserIDFromContext(c); ok {
		userID = &id
	}

	e, err := h.uc.Submit(c.Request().Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}
