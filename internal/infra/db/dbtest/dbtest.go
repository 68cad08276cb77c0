// Package dbtest はテスト用のインメモリDBを用意する。
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"storefront/internal/domain/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// テストごとに独立したSQLite(メモリ)。外部キー有効
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:storefront_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// ユーザー作成（ProfileとCartはフックで作られる）
func CreateUser(t testing.TB, db *gorm.DB, username string) model.User {
	t.Helper()

	u := model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// カテゴリ・出品者・商品を1つずつ作る
func CreateProduct(t testing.TB, db *gorm.DB, name string, price int64) model.Product {
	t.Helper()

	owner := CreateUser(t, db, "seller_"+model.Slugify(name))
	cat := model.Category{Name: "Category " + name}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	seller := model.Seller{UserID: owner.ID, Name: "Seller " + name}
	if err := db.Create(&seller).Error; err != nil {
		t.Fatalf("create seller: %v", err)
	}
	p := model.Product{
		UserID:     owner.ID,
		Name:       name,
		CategoryID: cat.ID,
		SellerID:   seller.ID,
		Price:      price,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func CreateAddress(t testing.TB, db *gorm.DB, userID int64) model.Address {
	t.Helper()

	a := model.Address{
		UserID:  userID,
		Address: "12 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Country: model.DefaultCountry,
		Pincode: "560001",
		Phone:   "9999999999",
	}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("create address: %v", err)
	}
	return a
}
