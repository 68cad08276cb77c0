package model

import "time"

const DefaultProfileImage = "default-profile.jpg"

// ユーザーと1対1
type Profile struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"not null;uniqueIndex" json:"user_id"`
	DOB       *time.Time `gorm:"type:date" json:"dob"`
	Image     string     `gorm:"type:varchar(512);not null;default:'default-profile.jpg'" json:"image"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
}
