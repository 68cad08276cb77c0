package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
	repo "storefront/internal/repository"
	"storefront/internal/repository/repomock"
	"storefront/internal/usecase"
)

type cartMocks struct {
	carts    *repomock.CartRepo
	items    *repomock.CartItemRepo
	products *repomock.ProductRepo
}

func newCartUsecase() (*usecase.CartUsecase, cartMocks) {
	m := cartMocks{carts: new(repomock.CartRepo), items: new(repomock.CartItemRepo), products: new(repomock.ProductRepo)}
	return usecase.NewCartUsecase(m.carts, m.items, m.products), m
}

func TestCartUsecase_AddToCart_Validation(t *testing.T) {
	uc, _ := newCartUsecase()

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 0, Quantity: 0})
	requireFieldError(t, err, "product_id")
	requireFieldError(t, err, "quantity")
}

func TestCartUsecase_AddToCart_ProductNotFound(t *testing.T) {
	uc, m := newCartUsecase()
	m.products.On("FindByID", mock.Anything, int64(7)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 7, Quantity: 1})
	requireHTTPError(t, err, http.StatusNotFound, "product not found")
	m.items.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_UsesCurrentPrice(t *testing.T) {
	uc, m := newCartUsecase()
	p := model.Product{ID: 7, Name: "Pen", Price: 150}

	m.products.On("FindByID", mock.Anything, int64(7)).Return(p, nil)
	m.carts.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 3, UserID: 1}, nil)
	m.items.On("UpsertByCartAndProduct", mock.Anything, int64(3), int64(7), int64(2), int64(150)).Return(nil)
	m.items.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 11, CartID: 3, ProductID: 7, Quantity: 2, Total: 300, Product: &p},
	}, nil)

	out, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 7, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(300), out.Total)
	if assert.Len(t, out.Items, 1) {
		assert.Equal(t, "Pen", out.Items[0].ProductName)
		assert.Equal(t, int64(150), out.Items[0].ProductPrice)
	}
	m.items.AssertExpectations(t)
}

func TestCartUsecase_UpdateCartItem_RecomputesTotal(t *testing.T) {
	uc, m := newCartUsecase()

	m.items.On("FindOwned", mock.Anything, int64(11), int64(1)).Return(model.CartItem{ID: 11, CartID: 3, ProductID: 7, Quantity: 1}, nil)
	m.products.On("FindByID", mock.Anything, int64(7)).Return(model.Product{ID: 7, Price: 100}, nil)
	m.items.On("UpdateQuantity", mock.Anything, int64(11), int64(3), int64(300)).Return(nil)
	m.items.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{}, nil)

	_, err := uc.UpdateCartItem(context.Background(), 1, 11, usecase.UpdateCartItemInput{Quantity: 3})
	require.NoError(t, err)
	m.items.AssertExpectations(t)
}

func TestCartUsecase_UpdateCartItem_OtherUsersItem(t *testing.T) {
	uc, m := newCartUsecase()
	m.items.On("FindOwned", mock.Anything, int64(11), int64(2)).Return(model.CartItem{}, repo.ErrNotFound)

	_, err := uc.UpdateCartItem(context.Background(), 2, 11, usecase.UpdateCartItemInput{Quantity: 3})
	requireHTTPError(t, err, http.StatusNotFound, "not found")
	m.items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_RemoveFromCart(t *testing.T) {
	uc, m := newCartUsecase()

	_, err := uc.RemoveFromCart(context.Background(), 1, 0)
	requireFieldError(t, err, "cartitem_id")

	m.items.On("FindOwned", mock.Anything, int64(11), int64(2)).Return(model.CartItem{}, repo.ErrNotFound)
	_, err = uc.RemoveFromCart(context.Background(), 2, 11)
	requireHTTPError(t, err, http.StatusNotFound, "not found")
	m.items.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)

	m.items.On("FindOwned", mock.Anything, int64(11), int64(1)).Return(model.CartItem{ID: 11, CartID: 3}, nil)
	m.items.On("DeleteByID", mock.Anything, int64(11)).Return(nil)
	m.items.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{}, nil)
	out, err := uc.RemoveFromCart(context.Background(), 1, 11)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.Total)
}

func TestCartUsecase_Unauthorized(t *testing.T) {
	uc, _ := newCartUsecase()

	_, err := uc.GetCart(context.Background(), 0)
	requireHTTPError(t, err, http.StatusUnauthorized, "unauthorized")
}

// 実DBで同一商品の加算を確認
func TestCartUsecase_AddSameProductMerges(t *testing.T) {
	e := newEnv(t)
	u := dbtest.CreateUser(t, e.db, "alice")
	p := dbtest.CreateProduct(t, e.db, "Pen", 120)

	e.addToCart(t, u.ID, p, 1)
	e.addToCart(t, u.ID, p, 2)

	out, err := e.cart.GetCart(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(3), out.Items[0].Quantity)
	assert.Equal(t, int64(360), out.Items[0].Total)
	assert.Equal(t, int64(360), out.Total)
}
