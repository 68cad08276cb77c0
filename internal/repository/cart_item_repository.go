package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	// Productを読み込んだ状態で返す
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品はプラス。totalは現在価格で再計算
	UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPrice int64) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64, total int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	DeleteByCartID(ctx context.Context, cartID int64) (int64, error)
	// 他人の明細はErrNotFound
	FindOwned(ctx context.Context, cartItemID int64, userID int64) (model.CartItem, error)
}
