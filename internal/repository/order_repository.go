package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// 注文の絞り込み。ゼロ値の項目は条件にしない
type OrderFilter struct {
	UserID *int64
	Status model.OrderStatus
	From   *time.Time
	To     *time.Time
	// Limitが0なら全件
	Page  int
	Limit int
}

// Page/Limitから読み飛ばす件数
func (f OrderFilter) Offset() int {
	if f.Page < 2 || f.Limit < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 他人の注文はErrNotFound
	FindByGatewayOrderID(ctx context.Context, userID int64, gatewayOrderID string) (model.Order, error)
	// 同じユーザーの同じキーで作った注文。なければErrNotFound
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, error)
	// 新しい順と総件数
	List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error)

	// IDはorderに書き戻す。キー重複はErrConflict
	Create(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	// gateway_order_idが空のときだけ入れる。入れたらtrue
	SetGatewayOrderIDIfEmpty(ctx context.Context, orderID int64, gatewayOrderID string) (bool, error)
	//未払いのときだけ支払い済みにする。更新したらtrue
	MarkPaid(ctx context.Context, orderID int64, paymentID, signature string) (bool, error)
}
