package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"storefront/internal/usecase"
)

// Razorpay Orders APIのクライアント
type RazorpayClient struct {
	http   *resty.Client
	secret string
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func NewRazorpayClient(baseURL, key, secret string) *RazorpayClient {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetBasicAuth(key, secret).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")
	return &RazorpayClient{http: c, secret: secret}
}

var _ usecase.PaymentGateway = (*RazorpayClient)(nil)

// POST /v1/orders
func (c *RazorpayClient) CreateOrder(ctx context.Context, req usecase.GatewayOrderRequest) (usecase.GatewayOrder, error) {
	var out orderResponse
	var apiErr errorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(createOrderRequest{
			Amount:         req.Amount,
			Currency:       req.Currency,
			Receipt:        req.Receipt,
			PaymentCapture: 1,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/orders")
	if err != nil {
		return usecase.GatewayOrder{}, fmt.Errorf("razorpay create order: %w", err)
	}

	if resp.IsError() {
		desc := apiErr.Error.Description
		if desc == "" {
			desc = string(resp.Body())
		}
		return usecase.GatewayOrder{}, fmt.Errorf("razorpay create order failed with status %d: %s", resp.StatusCode(), desc)
	}
	if out.ID == "" {
		return usecase.GatewayOrder{}, fmt.Errorf("razorpay create order: empty order id")
	}

	return usecase.GatewayOrder{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Receipt:  out.Receipt,
		Status:   out.Status,
	}, nil
}

// HMAC-SHA256(order_id|payment_id) を定数時間で比較
func (c *RazorpayClient) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) error {
	return VerifySignature(c.secret, gatewayOrderID, paymentID, signature)
}

func VerifySignature(secret, gatewayOrderID, paymentID, signature string) error {
	expected := Sign(secret, gatewayOrderID, paymentID)
	got, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil {
		return usecase.ErrInvalidSignature
	}
	want, _ := hex.DecodeString(expected)
	if !hmac.Equal(want, got) {
		return usecase.ErrInvalidSignature
	}
	return nil
}

// テストとseedで使う
func Sign(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
