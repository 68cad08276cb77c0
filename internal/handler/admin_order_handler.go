package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/infra/export"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

// gは /api/admin（JWT + token_version + ADMIN）
func (h *AdminOrderHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/orders", h.list)
	g.GET("/orders/export", h.export)
	g.PUT("/orders/:id/status", h.updateStatus)
	g.GET("/audit-logs", h.auditLogs)
}

// status, user_id, from, to の共通部分
func parseOrderFilter(c echo.Context) (repository.OrderFilter, string) {
	f := repository.OrderFilter{Page: 1, Limit: 50, Status: model.OrderStatus(c.QueryParam("status"))}

	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return f, "invalid page"
		}
		f.Page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return f, "invalid limit"
		}
		f.Limit = l
	}
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, "invalid user_id"
		}
		f.UserID = &id
	}

	var ok bool
	if f.From, ok = usecase.ParseDateTime(c.QueryParam("from")); !ok {
		return f, "invalid from"
	}
	if f.To, ok = usecase.ParseDateTime(c.QueryParam("to")); !ok {
		return f, "invalid to"
	}
	return f, ""
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	f, msg := parseOrderFilter(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// orders.xlsx をダウンロード
func (h *AdminOrderHandler) export(c echo.Context) error {
	f, msg := parseOrderFilter(c)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}

	rows, err := h.uc.ExportRows(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}

	//書き込み失敗時にJSONを返せるよう一度バッファへ
	var buf bytes.Buffer
	if err := export.WriteOrders(&buf, rows); err != nil {
		c.Logger().Errorf("export orders: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to write excel file"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+export.OrdersFilename)
	return c.Blob(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	// ★操作した管理者IDを取得（監査ログ用）
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.UpdateStatus(
		c.Request().Context(),
		adminID,
		orderID,
		usecase.AdminUpdateOrderStatusInput{Status: req.Status},
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	var f repository.AuditLogFilter

	if v := c.QueryParam("actor_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_user_id"})
		}
		f.ActorUserID = &id
	}
	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid resource_id"})
		}
		f.ResourceID = &id
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		f.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil || o < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		f.Offset = o
	}

	var ok bool
	if f.CreatedFrom, ok = usecase.ParseDateTime(c.QueryParam("from")); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	if f.CreatedTo, ok = usecase.ParseDateTime(c.QueryParam("to")); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	list, err := h.uc.AuditLogs(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
