package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
	"storefront/internal/usecase"
)

func TestOrderUsecase_ListAndGetOwnOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, e.db, "alice")
	bob := dbtest.CreateUser(t, e.db, "bob")
	addr := dbtest.CreateAddress(t, e.db, alice.ID)
	e.addToCart(t, alice.ID, dbtest.CreateProduct(t, e.db, "Pen", 100), 2)

	placed, err := e.checkout.Checkout(ctx, alice.ID, usecase.CheckoutInput{AddressID: addr.ID, PaymentMode: string(model.PaymentModeCOD)})
	require.NoError(t, err)

	list, err := e.orders.ListMyOrders(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, placed.OrderID, list[0].ID)
	require.Len(t, list[0].Items, 1)
	assert.Equal(t, "Pen", list[0].Items[0].ProductName)
	assert.Equal(t, int64(200), list[0].Items[0].Total)

	got, err := e.orders.GetMyOrder(ctx, alice.ID, placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.Total)
	assert.Equal(t, "Cash on Delivery", got.PaymentMode)

	//他人の注文は存在しない扱い
	_, err = e.orders.GetMyOrder(ctx, bob.ID, placed.OrderID)
	requireHTTPError(t, err, http.StatusNotFound, "not found")

	empty, err := e.orders.ListMyOrders(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
