package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/domain/model"
)

const (
	seedPassword = "password123"

	//10.00〜500.00（パイサ）
	minPrice = 1000
	maxPrice = 50000
)

var (
	categoryWords = []string{"Spices", "Textiles", "Pottery", "Tea", "Handicrafts", "Jewellery", "Footwear", "Books", "Toys", "Kitchen"}
	sellerWords   = []string{"Traders", "Emporium", "Bazaar", "Works", "House", "Mart", "Depot", "Co"}
	productWords  = []string{"Classic", "Royal", "Organic", "Handmade", "Premium", "Rustic", "Golden", "Everyday", "Heritage", "Festive"}
	nounWords     = []string{"Basket", "Scarf", "Mug", "Blend", "Lamp", "Sandal", "Bangle", "Journal", "Kite", "Tray"}
)

type hasher interface {
	Hash(plain string) (string, error)
}

type seeder struct {
	db     *gorm.DB
	hasher hasher
	rng    *rand.Rand
	// 再実行してもユニーク制約にぶつからないように
	batch string
}

type seedResult struct {
	categories int
	sellers    int
	products   int
}

func newSeeder(db *gorm.DB, h hasher, rng *rand.Rand) *seeder {
	return &seeder{db: db, hasher: h, rng: rng, batch: strings.SplitN(uuid.NewString(), "-", 2)[0]}
}

func (s *seeder) run(nCategories, nSellers, nProducts int) (seedResult, error) {
	if nCategories < 1 || nSellers < 1 {
		return seedResult{}, fmt.Errorf("need at least one category and one seller")
	}

	var res seedResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cats, err := s.seedCategories(tx, nCategories)
		if err != nil {
			return err
		}
		sellers, err := s.seedSellers(tx, nSellers)
		if err != nil {
			return err
		}
		prods, err := s.seedProducts(tx, cats, sellers, nProducts)
		if err != nil {
			return err
		}
		res = seedResult{categories: len(cats), sellers: len(sellers), products: len(prods)}
		return nil
	})
	return res, err
}

func (s *seeder) pick(words []string) string {
	return words[s.rng.Intn(len(words))]
}

func (s *seeder) seedCategories(tx *gorm.DB, n int) ([]model.Category, error) {
	out := make([]model.Category, 0, n)
	for i := 0; i < n; i++ {
		c := model.Category{
			Name:        fmt.Sprintf("%s %s-%d", s.pick(categoryWords), s.batch, i+1),
			Description: "Sample category",
		}
		if err := tx.Create(&c).Error; err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

// 出品者ごとにユーザーも作る（ProfileとCartはフックで作られる）
func (s *seeder) seedSellers(tx *gorm.DB, n int) ([]model.Seller, error) {
	hash, err := s.hasher.Hash(seedPassword)
	if err != nil {
		return nil, err
	}

	out := make([]model.Seller, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("seller_%s_%d", s.batch, i+1)
		u := model.User{
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: hash,
			Role:         model.RoleUser,
			IsActive:     true,
		}
		if err := tx.Create(&u).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}

		sl := model.Seller{
			UserID:      u.ID,
			Name:        fmt.Sprintf("%s %s %s-%d", s.pick(productWords), s.pick(sellerWords), s.batch, i+1),
			Description: "Sample seller",
		}
		if err := tx.Create(&sl).Error; err != nil {
			return nil, fmt.Errorf("create seller: %w", err)
		}
		out = append(out, sl)
	}
	return out, nil
}

func (s *seeder) seedProducts(tx *gorm.DB, cats []model.Category, sellers []model.Seller, n int) ([]model.Product, error) {
	out := make([]model.Product, 0, n)
	for i := 0; i < n; i++ {
		seller := sellers[s.rng.Intn(len(sellers))]
		p := model.Product{
			UserID:      seller.UserID,
			Name:        fmt.Sprintf("%s %s %s-%d", s.pick(productWords), s.pick(nounWords), s.batch, i+1),
			Description: "Sample product",
			CategoryID:  cats[s.rng.Intn(len(cats))].ID,
			SellerID:    seller.ID,
			Price:       minPrice + s.rng.Int63n(maxPrice-minPrice+1),
		}
		if err := tx.Create(&p).Error; err != nil {
			return nil, fmt.Errorf("create product: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}
