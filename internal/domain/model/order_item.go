package model

import "time"

// 注文時点のスナップショット。作成後は変更しない
type OrderItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64     `gorm:"not null;index" json:"order"`
	ProductID   int64     `gorm:"not null;index" json:"product"`
	Product     *Product  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	Total       int64     `gorm:"not null" json:"total"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
