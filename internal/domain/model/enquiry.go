package model

import "time"

// お問い合わせ。未ログインでも送れる
type Enquiry struct {
	ID      int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  *int64    `gorm:"index" json:"user"`
	User    *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name    string    `gorm:"type:varchar(255)" json:"name"`
	Email   string    `gorm:"type:varchar(255)" json:"email"`
	Subject string    `gorm:"type:varchar(255);not null" json:"subject"`
	Message string    `gorm:"type:text;not null" json:"message"`
	Date    time.Time `gorm:"not null;autoCreateTime" json:"date"`
}
