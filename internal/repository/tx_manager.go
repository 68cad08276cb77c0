package repository

import "context"

// 1つのトランザクションに束ねたリポジトリ。注文確定・支払い確認・管理操作で使う
type TxRepos interface {
	Products() ProductRepository
	Carts() CartRepository
	CartItems() CartItemRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	AuditLogs() AuditLogRepository
}

// fnがエラーを返したらロールバック、nilならcommit
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
