package usecase

import (
	"context"
	"errors"
)

// 署名が一致しない
var ErrInvalidSignature = errors.New("invalid payment signature")

// 決済ゲートウェイ（Razorpay互換）
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (GatewayOrder, error)
	//一致しなければErrInvalidSignature
	VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) error
}

// Amountは最小通貨単位
type GatewayOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
}

type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}
