package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	//SELECT ... FOR UPDATE。Tx内で使う
	LockByUserID(ctx context.Context, userID int64) (model.Cart, error)
}
