package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type PaymentUsecase struct {
	tx      repo.TransactionManager
	orders  repo.OrderRepository
	gateway PaymentGateway
	gw      gatewayOrders
}

// DI
func NewPaymentUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	gateway PaymentGateway,
	currency string,
) *PaymentUsecase {
	return &PaymentUsecase{
		tx:      tx,
		orders:  orders,
		gateway: gateway,
		gw:      gatewayOrders{orders: orders, gateway: gateway, currency: currency},
	}
}

type VerifyPaymentInput struct {
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
}

type VerifyPaymentOutput struct {
	Message     string `json:"message"`
	OrderID     int64  `json:"order_id"`
	AmountPaid  int64  `json:"amount_paid"`
	AmountDue   int64  `json:"amount_due"`
	PaymentMode string `json:"payment_mode"`
	OrderStatus string `json:"order_status"`
}

const (
	MsgPaymentVerified        = "payment verified"
	MsgPaymentAlreadyVerified = "payment already verified"
)

// 署名チェックは書き込みより前
func (u *PaymentUsecase) VerifyPayment(ctx context.Context, userID int64, in VerifyPaymentInput) (VerifyPaymentOutput, error) {
	if userID <= 0 {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	gid := strings.TrimSpace(in.RazorpayOrderID)
	pid := strings.TrimSpace(in.RazorpayPaymentID)
	sig := strings.TrimSpace(in.RazorpaySignature)

	fields := map[string]string{}
	if gid == "" {
		fields["razorpay_order_id"] = msgRequired
	}
	if pid == "" {
		fields["razorpay_payment_id"] = msgRequired
	}
	if sig == "" {
		fields["razorpay_signature"] = msgRequired
	}
	if err := newValidationError(fields); err != nil {
		return VerifyPaymentOutput{}, err
	}

	//本人の注文だけ
	o, err := u.orders.FindByGatewayOrderID(ctx, userID, gid)
	if errors.Is(err, repo.ErrNotFound) {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return VerifyPaymentOutput{}, dbError(err)
	}

	if err := u.gateway.VerifyPaymentSignature(gid, pid, sig); err != nil {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment signature")
	}

	msg := MsgPaymentVerified
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		updated, err := r.Orders().MarkPaid(ctx, o.ID, pid, sig)
		if err != nil {
			return dbError(err)
		}

		cur, err := r.Orders().FindByID(ctx, o.ID)
		if err != nil {
			return dbError(err)
		}
		if !updated {
			//同じ支払いの再送は何も変えない
			if cur.GatewayPaymentID != pid {
				return NewHTTPError(http.StatusConflict, "order already paid")
			}
			msg = MsgPaymentAlreadyVerified
		}
		o = cur
		return nil
	})
	if err != nil {
		return VerifyPaymentOutput{}, err
	}

	return VerifyPaymentOutput{
		Message:     msg,
		OrderID:     o.ID,
		AmountPaid:  o.AmountPaid,
		AmountDue:   o.AmountDue,
		PaymentMode: string(o.PaymentMode),
		OrderStatus: string(o.Status),
	}, nil
}

// ゲートウェイ注文の作成に失敗した注文を再試行する
func (u *PaymentUsecase) RetryGatewayOrder(ctx context.Context, userID int64, orderID int64) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return CheckoutOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CheckoutOutput{}, dbError(err)
	}
	if o.UserID != userID {
		return CheckoutOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if o.PaymentMode != model.PaymentModeOnline {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "order is not an online payment order")
	}
	if o.Status != model.OrderStatusPending {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "order is not pending")
	}
	if o.AmountDue == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusConflict, "order already paid")
	}

	return u.gw.ensure(ctx, o)
}
