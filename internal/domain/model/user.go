package model

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string     `gorm:"type:varchar(150)" json:"last_name"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	TokenVersion int        `gorm:"not null;default:0" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"date_joined"`
	UpdatedAt    time.Time  `json:"-"`

	//ユーザー削除で一緒に消える
	Profile   *Profile  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Cart      *Cart     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Addresses []Address `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Orders    []Order   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// 作成と同じトランザクションでProfileと空のCartを用意する
func (u *User) AfterCreate(tx *gorm.DB) error {
	if err := tx.Create(&Profile{UserID: u.ID, Image: DefaultProfileImage}).Error; err != nil {
		return err
	}
	return tx.Create(&Cart{UserID: u.ID}).Error
}

func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin
}
