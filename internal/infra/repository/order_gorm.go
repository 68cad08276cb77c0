package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) findOne(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Scopes(scope).Take(&o).Error; err != nil {
		return model.Order{}, translateErr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	return r.findOne(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("id = ?", orderID)
	})
}

func (r *OrderGormRepository) FindByGatewayOrderID(ctx context.Context, userID int64, gatewayOrderID string) (model.Order, error) {
	return r.findOne(ctx, func(q *gorm.DB) *gorm.DB {
		return ownedBy(userID)(q).Where("gateway_order_id = ?", gatewayOrderID)
	})
}

func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, error) {
	return r.findOne(ctx, func(q *gorm.DB) *gorm.DB {
		return ownedBy(userID)(q).Where("idempotency_key = ?", key)
	})
}

func orderConditions(f repo.OrderFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.UserID != nil {
			q = ownedBy(*f.UserID)(q)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.From != nil {
			q = q.Where("date >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("date <= ?", *f.To)
		}
		return q
	}
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderFilter) ([]model.Order, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Order{}).Scopes(orderConditions(f))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base.Session(&gorm.Session{}).Order("date DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset())
	}
	orders := make([]model.Order, 0)
	if err := q.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return translateInsertErr(r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	return r.updateOne(ctx, orderID, map[string]interface{}{"status": status})
}

// 同時の再試行で先に付いたIDを上書きしない
func (r *OrderGormRepository) SetGatewayOrderIDIfEmpty(ctx context.Context, orderID int64, gatewayOrderID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND (gateway_order_id IS NULL OR gateway_order_id = '')", orderID).
		Update("gateway_order_id", gatewayOrderID)
	if res.Error != nil {
		return false, translateErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *OrderGormRepository) updateOne(ctx context.Context, orderID int64, cols map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", orderID).Updates(cols)
	return affectedOne(res)
}

// amount_due > 0 の条件付きUPDATEなので二重に支払い済みにならない
func (r *OrderGormRepository) MarkPaid(ctx context.Context, orderID int64, paymentID, signature string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND amount_due > 0", orderID).
		Updates(map[string]interface{}{
			"gateway_payment_id": paymentID,
			"gateway_signature":  signature,
			"amount_paid":        gorm.Expr("total"),
			"amount_due":         0,
			"payment_mode":       model.PaymentModeOnline,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
