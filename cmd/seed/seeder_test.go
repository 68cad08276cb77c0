package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
)

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func TestSeeder_Run(t *testing.T) {
	db := dbtest.New(t)
	s := newSeeder(db, plainHasher{}, rand.New(rand.NewSource(1)))

	res, err := s.run(3, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, seedResult{categories: 3, sellers: 2, products: 10}, res)

	var products []model.Product
	require.NoError(t, db.Find(&products).Error)
	require.Len(t, products, 10)
	for _, p := range products {
		assert.GreaterOrEqual(t, p.Price, int64(minPrice))
		assert.LessOrEqual(t, p.Price, int64(maxPrice))
		assert.NotEmpty(t, p.Slug)
	}

	//出品者ユーザーにもプロフィールとカートがある
	var profiles, carts int64
	require.NoError(t, db.Model(&model.Profile{}).Count(&profiles).Error)
	require.NoError(t, db.Model(&model.Cart{}).Count(&carts).Error)
	assert.Equal(t, int64(2), profiles)
	assert.Equal(t, int64(2), carts)

	//2回目もユニーク制約に当たらない
	again := newSeeder(db, plainHasher{}, rand.New(rand.NewSource(1)))
	_, err = again.run(3, 2, 10)
	require.NoError(t, err)
}

func TestSeeder_RequiresCategoryAndSeller(t *testing.T) {
	s := newSeeder(dbtest.New(t), plainHasher{}, rand.New(rand.NewSource(1)))
	_, err := s.run(0, 1, 1)
	assert.Error(t, err)
}
