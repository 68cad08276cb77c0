package handler

import (
	"net/http"

	auth "storefront/internal/usecase/auth_usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc        *auth.ForceLogoutUsecase
	validator validator.AuthValidator
}

func NewAdminUserHandler(uc *auth.ForceLogoutUsecase, v validator.AuthValidator) *AdminUserHandler {
	return &AdminUserHandler{uc: uc, validator: v}
}

func (h *AdminUserHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/users/:id/force-logout", h.ForceLogout)
}

func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	targetID, _ := parseIDParam(c, "id")
	if err := h.validator.ValidateForceLogout(targetID); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	res, err := h.uc.Execute(c.Request().Context(), adminID, targetID)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, res)
}
