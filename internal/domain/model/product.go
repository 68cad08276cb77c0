package model

import (
	"time"

	"gorm.io/gorm"
)

// Priceは最小通貨単位（パイサ）
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  int64     `gorm:"not null;index" json:"category"`
	Category    *Category `json:"-"`
	SellerID    int64     `gorm:"not null;index" json:"seller"`
	Seller      *Seller   `json:"-"`
	Price       int64     `gorm:"not null" json:"price"`
	Image       string    `gorm:"type:varchar(512);not null;default:'default.jpg'" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	return nil
}
