package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 注文明細は注文確定時に一度だけ書く
type OrderItemRepository interface {
	Insert(ctx context.Context, orderID int64, items []model.OrderItem) error
	// 注文IDごとにまとめて返す。1クエリで取る
	ListByOrders(ctx context.Context, orderIDs ...int64) (map[int64][]model.OrderItem, error)
}
