package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 注文確定と決済確認
type CheckoutHandler struct {
	checkout *usecase.CheckoutUsecase
	payment  *usecase.PaymentUsecase
}

// DI
func NewCheckoutHandler(checkout *usecase.CheckoutUsecase, payment *usecase.PaymentUsecase) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, payment: payment}
}

type CheckoutRequest struct {
	AddressID   int64  `json:"address_id"`
	PaymentMode string `json:"payment_mode"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

const IdempotencyKeyHeader = "X-Idempotency-Key"

func (h *CheckoutHandler) RegisterRoutes(g *echo.Group, mw ...echo.MiddlewareFunc) {
	g.POST("/checkout", h.create, mw...)
	g.POST("/verify-payment", h.verify, mw...)
	g.POST("/orders/:id/payment", h.retry, mw...)
}

func (h *CheckoutHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	out, err := h.checkout.Checkout(c.Request().Context(), userID, usecase.CheckoutInput{
		AddressID:      req.AddressID,
		PaymentMode:    req.PaymentMode,
		IdempotencyKey: c.Request().Header.Get(IdempotencyKeyHeader),
	})
	if err != nil {
		return writeError(c, err)
	}

	if out.Replayed {
		return c.JSON(http.StatusOK, out)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CheckoutHandler) verify(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.payment.VerifyPayment(c.Request().Context(), userID, usecase.VerifyPaymentInput{
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpaySignature: req.RazorpaySignature,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// ゲートウェイ注文の作り直し（checkout時に502だった注文）
func (h *CheckoutHandler) retry(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
	}

	out, err := h.payment.RetryGatewayOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
