package repository

import (
	"context"

	"gorm.io/gorm"

	repo "storefront/internal/repository"
)

// txを握ったまま各リポジトリを作る
type txScope struct {
	tx *gorm.DB
}

func (s txScope) Products() repo.ProductRepository     { return NewProductGormRepository(s.tx) }
func (s txScope) Carts() repo.CartRepository           { return NewCartGormRepository(s.tx) }
func (s txScope) CartItems() repo.CartItemRepository   { return NewCartGormRepository(s.tx) }
func (s txScope) Orders() repo.OrderRepository         { return NewOrderGormRepository(s.tx) }
func (s txScope) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(s.tx) }
func (s txScope) AuditLogs() repo.AuditLogRepository   { return NewAuditLogGormRepository(s.tx) }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txScope{tx: tx})
	})
}
