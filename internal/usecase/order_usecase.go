package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderItemOutput struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	Total       int64  `json:"total"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user"`
	AddressID       int64             `json:"address"`
	Date            time.Time         `json:"date"`
	Total           int64             `json:"total"`
	PaymentMode     string            `json:"payment_mode"`
	AmountPaid      int64             `json:"amount_paid"`
	AmountDue       int64             `json:"amount_due"`
	Status          string            `json:"status"`
	RazorpayOrderID *string           `json:"razorpay_order_id"`
	Items           []OrderItemOutput `json:"items"`
}

// 新しい順
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().List(ctx, repo.OrderFilter{UserID: &userID})
		if err != nil {
			return dbError(err)
		}

		outs, err = withItems(ctx, r.OrderItems(), orders)
		return err
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(err)
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		byOrder, err := r.OrderItems().ListByOrders(ctx, orderID)
		if err != nil {
			return dbError(err)
		}

		out = toOrderOutput(o, byOrder[orderID])
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 明細はまとめて1クエリ
func withItems(ctx context.Context, items repo.OrderItemRepository, orders []model.Order) ([]OrderOutput, error) {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	byOrder, err := items.ListByOrders(ctx, ids...)
	if err != nil {
		return nil, dbError(err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, byOrder[o.ID]))
	}
	return outs, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Total:       it.Total,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		AddressID:       o.AddressID,
		Date:            o.Date,
		Total:           o.Total,
		PaymentMode:     string(o.PaymentMode),
		AmountPaid:      o.AmountPaid,
		AmountDue:       o.AmountDue,
		Status:          string(o.Status),
		RazorpayOrderID: o.GatewayOrderID,
		Items:           outItems,
	}
}
