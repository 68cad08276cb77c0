package model

import "time"

const DefaultCountry = "India"

// 配送先住所
type Address struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  int64  `gorm:"not null;index" json:"user"`
	Address string `gorm:"type:varchar(255);not null" json:"address"`
	City    string `gorm:"type:varchar(255);not null" json:"city"`
	State   string `gorm:"type:varchar(255);not null" json:"state"`
	Country string `gorm:"type:varchar(255);not null;default:'India'" json:"country"`
	//郵便番号
	Pincode string `gorm:"type:varchar(255);not null" json:"pincode"`
	Phone   string `gorm:"type:varchar(255);not null" json:"phone"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	//注文から参照されている住所は消せない（NO ACTION）
	Orders []Order `json:"-"`
}
