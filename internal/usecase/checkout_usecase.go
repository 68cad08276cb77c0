package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

const MsgCODCreated = "COD Order created successfully"

type CheckoutUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
	gw        gatewayOrders
	now       func() time.Time
}

// DI
func NewCheckoutUsecase(
	tx repo.TransactionManager,
	addresses repo.AddressRepository,
	orders repo.OrderRepository,
	gateway PaymentGateway,
	currency string,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:        tx,
		addresses: addresses,
		gw:        gatewayOrders{orders: orders, gateway: gateway, currency: currency},
		now:       time.Now,
	}
}

type CheckoutInput struct {
	AddressID   int64
	PaymentMode string
	//X-Idempotency-Key（任意）
	IdempotencyKey string
}

type CheckoutOutput struct {
	Message         string `json:"message,omitempty"`
	OrderID         int64  `json:"order_id"`
	RazorpayOrderID string `json:"razorpay_order_id,omitempty"`
	Amount          int64  `json:"amount,omitempty"`
	Currency        string `json:"currency,omitempty"`
	Receipt         string `json:"receipt,omitempty"`
	OrderStatus     string `json:"order_status"`
	//既存注文を返したとき
	Replayed bool `json:"-"`
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	mode := model.PaymentMode(strings.TrimSpace(in.PaymentMode))
	key := strings.TrimSpace(in.IdempotencyKey)

	fields := map[string]string{}
	if in.AddressID <= 0 {
		fields["address_id"] = msgRequired
	}
	if mode == "" {
		fields["payment_mode"] = msgRequired
	} else if !mode.Valid() {
		fields["payment_mode"] = fmt.Sprintf("%q is not a valid choice.", in.PaymentMode)
	}
	if len(key) > 255 {
		fields["idempotency_key"] = "Ensure this field has no more than 255 characters."
	}
	if err := newValidationError(fields); err != nil {
		return CheckoutOutput{}, err
	}

	//他人の住所も404
	addr, err := u.addresses.FindForUser(ctx, userID, in.AddressID)
	if errors.Is(err, repo.ErrNotFound) {
		return CheckoutOutput{}, NewHTTPError(http.StatusNotFound, "address not found")
	}
	if err != nil {
		return CheckoutOutput{}, dbError(err)
	}

	var order model.Order
	replayed := false

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じカートの同時checkoutはここで直列になる
		cart, err := r.Carts().LockByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}
		if err != nil {
			return dbError(err)
		}

		// 同じキーなら同じ結果
		if key != "" {
			existing, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err == nil {
				order = existing
				replayed = true
				return nil
			}
			if !errors.Is(err, repo.ErrNotFound) {
				return dbError(err)
			}
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return dbError(err)
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusNotFound, "cart is empty")
		}

		//現在価格で明細と合計を作る
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		var total int64 = 0
		for _, ci := range cartItems {
			if ci.Product == nil {
				return dbError(fmt.Errorf("cart item %d has no product", ci.ID))
			}
			line := ci.Product.Price * ci.Quantity
			orderItems = append(orderItems, model.OrderItem{
				ProductID:   ci.ProductID,
				ProductName: ci.Product.Name,
				Quantity:    ci.Quantity,
				Total:       line,
			})
			total += line
		}

		order = model.Order{
			UserID:      userID,
			AddressID:   addr.ID,
			Date:        u.now(),
			Total:       total,
			PaymentMode: mode,
			AmountPaid:  0,
			AmountDue:   total,
			Status:      model.OrderStatusPending,
		}
		if key != "" {
			order.IdempotencyKey = &key
		}

		err = r.Orders().Create(ctx, &order)
		switch {
		case errors.Is(err, repo.ErrReferenceMissing):
			//確認後に住所が消えた
			return NewHTTPError(http.StatusNotFound, "address not found")
		case errors.Is(err, repo.ErrConflict) && key != "":
			return NewHTTPError(http.StatusConflict, "idempotency conflict")
		case err != nil:
			return dbError(err)
		}

		if err := r.OrderItems().Insert(ctx, order.ID, orderItems); err != nil {
			if errors.Is(err, repo.ErrReferenceMissing) {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			return dbError(err)
		}

		if _, err := r.CartItems().DeleteByCartID(ctx, cart.ID); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return CheckoutOutput{}, err
	}

	var out CheckoutOutput
	if order.PaymentMode == model.PaymentModeOnline && order.AmountDue > 0 {
		//ゲートウェイはcommit後。失敗しても注文はPendingで残る
		out, err = u.gw.ensure(ctx, order)
		if err != nil {
			return CheckoutOutput{}, err
		}
	} else {
		out = CheckoutOutput{
			OrderID:     order.ID,
			OrderStatus: string(order.Status),
		}
		if order.PaymentMode == model.PaymentModeCOD {
			out.Message = MsgCODCreated
		}
	}
	out.Replayed = replayed
	return out, nil
}

// checkoutと再試行で共有するゲートウェイ注文の作成
type gatewayOrders struct {
	orders   repo.OrderRepository
	gateway  PaymentGateway
	currency string
}

func receiptFor(orderID int64) string {
	return fmt.Sprintf("order_rcptid_%d", orderID)
}

// ゲートウェイIDがあればそれを返し、無ければ作る
func (g gatewayOrders) ensure(ctx context.Context, o model.Order) (CheckoutOutput, error) {
	out := CheckoutOutput{
		OrderID:     o.ID,
		Amount:      o.Total,
		Currency:    g.currency,
		Receipt:     receiptFor(o.ID),
		OrderStatus: string(o.Status),
	}
	if o.GatewayOrderID != nil && *o.GatewayOrderID != "" {
		out.RazorpayOrderID = *o.GatewayOrderID
		return out, nil
	}

	gwOrder, err := g.gateway.CreateOrder(ctx, GatewayOrderRequest{
		Amount:   o.Total,
		Currency: g.currency,
		Receipt:  out.Receipt,
	})
	if err != nil {
		return CheckoutOutput{}, gatewayUnavailable(o.ID, err)
	}

	set, err := g.orders.SetGatewayOrderIDIfEmpty(ctx, o.ID, gwOrder.ID)
	if err != nil {
		return CheckoutOutput{}, gatewayUnavailable(o.ID, err)
	}
	if !set {
		//同時の再試行が先に付けたIDを返す。今作ったゲートウェイ注文は使わない
		cur, err := g.orders.FindByID(ctx, o.ID)
		if err != nil {
			return CheckoutOutput{}, dbError(err)
		}
		if cur.GatewayOrderID == nil || *cur.GatewayOrderID == "" {
			return CheckoutOutput{}, dbError(fmt.Errorf("order %d: gateway order id not stored", o.ID))
		}
		out.RazorpayOrderID = *cur.GatewayOrderID
		return out, nil
	}

	out.RazorpayOrderID = gwOrder.ID
	if gwOrder.Currency != "" {
		out.Currency = gwOrder.Currency
	}
	return out, nil
}

// order_idを返して再試行できるようにする
func gatewayUnavailable(orderID int64, cause error) error {
	return &HTTPError{
		Status:  http.StatusBadGateway,
		Message: "payment gateway unavailable",
		Data:    map[string]interface{}{"order_id": orderID},
		Err:     cause,
	}
}
