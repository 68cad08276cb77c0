package usecase_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
	"storefront/internal/infra/payment"
	infrarepo "storefront/internal/infra/repository"
	"storefront/internal/usecase"
)

const gatewaySecret = "rzp_test_secret"

// ゲートウェイの代わり。署名は本物と同じHMAC
type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	requests  []usecase.GatewayOrderRequest
	nextID    string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req usecase.GatewayOrderRequest) (usecase.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.createErr != nil {
		return usecase.GatewayOrder{}, g.createErr
	}
	id := g.nextID
	if id == "" {
		id = "order_" + req.Receipt
	}
	return usecase.GatewayOrder{ID: id, Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

func (g *fakeGateway) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) error {
	return payment.VerifySignature(gatewaySecret, gatewayOrderID, paymentID, signature)
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// SQLiteで組み立てた usecase 一式
type env struct {
	db       *gorm.DB
	gateway  *fakeGateway
	cart     *usecase.CartUsecase
	checkout *usecase.CheckoutUsecase
	payment  *usecase.PaymentUsecase
	orders   *usecase.OrderUsecase
	address  *usecase.AddressUsecase
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := dbtest.New(t)
	gw := &fakeGateway{}

	tx := infrarepo.NewTxManagerGorm(db)
	carts := infrarepo.NewCartGormRepository(db)
	products := infrarepo.NewProductGormRepository(db)
	orders := infrarepo.NewOrderGormRepository(db)
	addresses := infrarepo.NewAddressGormRepository(db)

	return &env{
		db:       db,
		gateway:  gw,
		cart:     usecase.NewCartUsecase(carts, carts, products),
		checkout: usecase.NewCheckoutUsecase(tx, addresses, orders, gw, "INR"),
		payment:  usecase.NewPaymentUsecase(tx, orders, gw, "INR"),
		orders:   usecase.NewOrderUsecase(tx),
		address:  usecase.NewAddressUsecase(addresses),
	}
}

func (e *env) addToCart(t *testing.T, userID int64, p model.Product, qty int64) {
	t.Helper()
	_, err := e.cart.AddToCart(context.Background(), userID, usecase.AddCartInput{ProductID: p.ID, Quantity: qty})
	require.NoError(t, err)
}

func (e *env) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Order{}).Count(&n).Error)
	return n
}

func (e *env) loadOrder(t *testing.T, id int64) model.Order {
	t.Helper()
	var o model.Order
	require.NoError(t, e.db.First(&o, id).Error)
	return o
}

func requireHTTPError(t *testing.T, err error, status int, msg string) *usecase.HTTPError {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "not an HTTPError: %v", err)
	require.Equal(t, status, he.Status)
	if msg != "" {
		require.Equal(t, msg, he.Message)
	}
	return he
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var ve *usecase.ValidationError
	require.True(t, errors.As(err, &ve), "not a ValidationError: %v", err)
	require.Contains(t, ve.Fields, field)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
