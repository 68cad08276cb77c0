package model

import (
	"time"

	"gorm.io/gorm"
)

// 出品者。ユーザーと1対1
type Seller struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex" json:"-"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"type:varchar(512);not null;default:'default-seller.jpg'" json:"image"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	Products []Product `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Seller) BeforeSave(tx *gorm.DB) error {
	if s.Slug == "" {
		s.Slug = Slugify(s.Name)
	}
	return nil
}
