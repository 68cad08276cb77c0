package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// DeliveredとCancelledは終端
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s != OrderStatusPending {
		return false
	}
	return next == OrderStatusDelivered || next == OrderStatusCancelled
}

type PaymentMode string

const (
	PaymentModeCOD    PaymentMode = "Cash on Delivery"
	PaymentModeOnline PaymentMode = "Online Payment"
)

func (m PaymentMode) Valid() bool {
	return m == PaymentModeCOD || m == PaymentModeOnline
}

// 金額はすべて最小通貨単位
type Order struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64       `gorm:"not null;index;uniqueIndex:idx_orders_user_idempotency" json:"user"`
	AddressID   int64       `gorm:"not null;index" json:"address"`
	Date        time.Time   `gorm:"not null" json:"date"`
	Total       int64       `gorm:"not null" json:"total"`
	PaymentMode PaymentMode `gorm:"type:varchar(50);not null" json:"payment_mode"`
	AmountPaid  int64       `gorm:"not null;default:0" json:"amount_paid"`
	AmountDue   int64       `gorm:"not null;default:0" json:"amount_due"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//決済ゲートウェイ側
	GatewayOrderID   *string `gorm:"type:varchar(255);uniqueIndex" json:"razorpay_order_id"`
	GatewayPaymentID string  `gorm:"type:varchar(255)" json:"razorpay_payment_id"`
	GatewaySignature string  `gorm:"type:varchar(255)" json:"-"`

	IdempotencyKey *string `gorm:"type:varchar(255);uniqueIndex:idx_orders_user_idempotency" json:"-"`

	Items     []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (o *Order) IsPaid() bool {
	return o.AmountDue == 0 && o.AmountPaid == o.Total
}
