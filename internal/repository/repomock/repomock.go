// testify/mockによるRepositoryのモック（テスト専用）
package repomock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// =====================
// UserRepository
// =====================

type UserRepo struct{ mock.Mock }

var _ repo.UserRepository = (*UserRepo)(nil)

func (m *UserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepo) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepo) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepo) UpdateNames(ctx context.Context, userID int64, firstName, lastName string) error {
	args := m.Called(ctx, userID, firstName, lastName)
	return args.Error(0)
}

func (m *UserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *UserRepo) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// =====================
// ProfileRepository
// =====================

type ProfileRepo struct{ mock.Mock }

var _ repo.ProfileRepository = (*ProfileRepo)(nil)

func (m *ProfileRepo) FindByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(model.Profile)
	return p, args.Error(1)
}

func (m *ProfileRepo) UpdateDOB(ctx context.Context, userID int64, dob *time.Time) error {
	args := m.Called(ctx, userID, dob)
	return args.Error(0)
}

func (m *ProfileRepo) UpdateImage(ctx context.Context, userID int64, image string) error {
	args := m.Called(ctx, userID, image)
	return args.Error(0)
}

// =====================
// RefreshTokenRepository
// =====================

type RefreshTokenRepo struct{ mock.Mock }

var _ repo.RefreshTokenRepository = (*RefreshTokenRepo)(nil)

func (m *RefreshTokenRepo) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	t, _ := args.Get(0).(*model.RefreshToken)
	return t, args.Error(1)
}

func (m *RefreshTokenRepo) MarkUsed(ctx context.Context, tokenID string, at time.Time) error {
	args := m.Called(ctx, tokenID, at)
	return args.Error(0)
}

func (m *RefreshTokenRepo) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *RefreshTokenRepo) DeleteByID(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *RefreshTokenRepo) DeleteExpiredByUserID(ctx context.Context, userID int64, now time.Time) (int64, error) {
	args := m.Called(ctx, userID, now)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

// =====================
// AuditLogRepository
// =====================

type AuditLogRepo struct{ mock.Mock }

var _ repo.AuditLogRepository = (*AuditLogRepo)(nil)

func (m *AuditLogRepo) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditLogRepo) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	l, _ := args.Get(0).([]model.AuditLog)
	return l, args.Error(1)
}

// =====================
// Catalog
// =====================

type CategoryRepo struct{ mock.Mock }

var _ repo.CategoryRepository = (*CategoryRepo)(nil)

func (m *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).([]model.Category)
	return l, args.Error(1)
}

func (m *CategoryRepo) FindBySlug(ctx context.Context, slug string) (model.Category, error) {
	args := m.Called(ctx, slug)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepo) Create(ctx context.Context, c model.Category) (model.Category, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(model.Category)
	return out, args.Error(1)
}

type SellerRepo struct{ mock.Mock }

var _ repo.SellerRepository = (*SellerRepo)(nil)

func (m *SellerRepo) List(ctx context.Context) ([]model.Seller, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).([]model.Seller)
	return l, args.Error(1)
}

func (m *SellerRepo) FindBySlug(ctx context.Context, slug string) (model.Seller, error) {
	args := m.Called(ctx, slug)
	s, _ := args.Get(0).(model.Seller)
	return s, args.Error(1)
}

func (m *SellerRepo) Create(ctx context.Context, s model.Seller) (model.Seller, error) {
	args := m.Called(ctx, s)
	out, _ := args.Get(0).(model.Seller)
	return out, args.Error(1)
}

type ProductRepo struct{ mock.Mock }

var _ repo.ProductRepository = (*ProductRepo)(nil)

func (m *ProductRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	l, _ := args.Get(0).([]model.Product)
	return l, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepo) ListByCategorySlug(ctx context.Context, categorySlug string) ([]model.Product, error) {
	args := m.Called(ctx, categorySlug)
	l, _ := args.Get(0).([]model.Product)
	return l, args.Error(1)
}

func (m *ProductRepo) FindBySlugs(ctx context.Context, categorySlug, productSlug string) (model.Product, error) {
	args := m.Called(ctx, categorySlug, productSlug)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepo) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// Cart
// =====================

type CartRepo struct{ mock.Mock }

var _ repo.CartRepository = (*CartRepo)(nil)

func (m *CartRepo) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepo) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepo) LockByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

type CartItemRepo struct{ mock.Mock }

var _ repo.CartItemRepository = (*CartItemRepo)(nil)

func (m *CartItemRepo) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	l, _ := args.Get(0).([]model.CartItem)
	return l, args.Error(1)
}

func (m *CartItemRepo) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPrice int64) error {
	args := m.Called(ctx, cartID, productID, addQty, unitPrice)
	return args.Error(0)
}

func (m *CartItemRepo) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64, total int64) error {
	args := m.Called(ctx, cartItemID, qty, total)
	return args.Error(0)
}

func (m *CartItemRepo) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepo) DeleteByCartID(ctx context.Context, cartID int64) (int64, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CartItemRepo) FindOwned(ctx context.Context, cartItemID int64, userID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID, userID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

// =====================
// Order
// =====================

type OrderRepo struct{ mock.Mock }

var _ repo.OrderRepository = (*OrderRepo)(nil)

func (m *OrderRepo) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepo) FindByGatewayOrderID(ctx context.Context, userID int64, gatewayOrderID string) (model.Order, error) {
	args := m.Called(ctx, userID, gatewayOrderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepo) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepo) List(ctx context.Context, f repo.OrderFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	l, _ := args.Get(0).([]model.Order)
	return l, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepo) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepo) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepo) SetGatewayOrderIDIfEmpty(ctx context.Context, orderID int64, gatewayOrderID string) (bool, error) {
	args := m.Called(ctx, orderID, gatewayOrderID)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepo) MarkPaid(ctx context.Context, orderID int64, paymentID, signature string) (bool, error) {
	args := m.Called(ctx, orderID, paymentID, signature)
	return args.Bool(0), args.Error(1)
}

type OrderItemRepo struct{ mock.Mock }

var _ repo.OrderItemRepository = (*OrderItemRepo)(nil)

func (m *OrderItemRepo) Insert(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepo) ListByOrders(ctx context.Context, orderIDs ...int64) (map[int64][]model.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	byOrder, _ := args.Get(0).(map[int64][]model.OrderItem)
	return byOrder, args.Error(1)
}

// =====================
// Address / Enquiry
// =====================

type AddressRepo struct{ mock.Mock }

var _ repo.AddressRepository = (*AddressRepo)(nil)

func (m *AddressRepo) Create(ctx context.Context, address *model.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *AddressRepo) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	l, _ := args.Get(0).([]model.Address)
	return l, args.Error(1)
}

func (m *AddressRepo) FindForUser(ctx context.Context, userID, addressID int64) (model.Address, error) {
	args := m.Called(ctx, userID, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepo) UpdateForUser(ctx context.Context, address model.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *AddressRepo) DeleteForUser(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type EnquiryRepo struct{ mock.Mock }

var _ repo.EnquiryRepository = (*EnquiryRepo)(nil)

func (m *EnquiryRepo) Create(ctx context.Context, e model.Enquiry) (model.Enquiry, error) {
	args := m.Called(ctx, e)
	out, _ := args.Get(0).(model.Enquiry)
	return out, args.Error(1)
}

// =====================
// TxManager / TxRepos
// =====================

// WithinTx の中で渡す repos を固定して unit テストを回す
type TxManager struct {
	Repos *TxRepos
}

var _ repo.TransactionManager = (*TxManager)(nil)

func (m *TxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.Repos)
}

type TxRepos struct {
	ProductRepo   *ProductRepo
	CartRepo      *CartRepo
	CartItemRepo  *CartItemRepo
	OrderRepo     *OrderRepo
	OrderItemRepo *OrderItemRepo
	AuditLogRepo  *AuditLogRepo
}

// すべて空のモックで埋める
func NewTxRepos() *TxRepos {
	return &TxRepos{
		ProductRepo:   new(ProductRepo),
		CartRepo:      new(CartRepo),
		CartItemRepo:  new(CartItemRepo),
		OrderRepo:     new(OrderRepo),
		OrderItemRepo: new(OrderItemRepo),
		AuditLogRepo:  new(AuditLogRepo),
	}
}

func (r *TxRepos) Products() repo.ProductRepository     { return r.ProductRepo }
func (r *TxRepos) Carts() repo.CartRepository           { return r.CartRepo }
func (r *TxRepos) CartItems() repo.CartItemRepository   { return r.CartItemRepo }
func (r *TxRepos) Orders() repo.OrderRepository         { return r.OrderRepo }
func (r *TxRepos) OrderItems() repo.OrderItemRepository { return r.OrderItemRepo }
func (r *TxRepos) AuditLogs() repo.AuditLogRepository   { return r.AuditLogRepo }
