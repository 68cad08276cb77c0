package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 配送先住所。取得・更新・削除はすべて持ち主のuserIDで絞る
// 他人の住所は存在しないものとしてErrNotFoundを返す
type AddressRepository interface {
	// IDとタイムスタンプはaddressに書き戻す
	Create(ctx context.Context, address *model.Address) error
	ListByUser(ctx context.Context, userID int64) ([]model.Address, error)
	FindForUser(ctx context.Context, userID, addressID int64) (model.Address, error)
	// address.UserIDとaddress.IDの組で更新する
	UpdateForUser(ctx context.Context, address model.Address) error
	// 注文から参照されていればErrConflict
	DeleteForUser(ctx context.Context, userID, addressID int64) error
}
