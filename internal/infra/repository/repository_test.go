package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
	infra "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
)

func TestCartRepository_UpsertMergesSameProduct(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.CreateUser(t, db, "alice")
	p := dbtest.CreateProduct(t, db, "Kettle", 50000)

	carts := infra.NewCartGormRepository(db)
	cart, err := carts.FindByUserID(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, carts.UpsertByCartAndProduct(ctx, cart.ID, p.ID, 1, 50000))
	//価格が変わっていても現在価格で再計算される
	require.NoError(t, carts.UpsertByCartAndProduct(ctx, cart.ID, p.ID, 2, 60000))

	items, err := carts.ListByCartID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].Quantity)
	assert.Equal(t, int64(180000), items[0].Total)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Kettle", items[0].Product.Name)
}

func TestCartRepository_FindOwnedScopesByUser(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	p := dbtest.CreateProduct(t, db, "Lamp", 1000)

	carts := infra.NewCartGormRepository(db)
	cart, err := carts.FindByUserID(ctx, alice.ID)
	require.NoError(t, err)
	require.NoError(t, carts.UpsertByCartAndProduct(ctx, cart.ID, p.ID, 1, p.Price))
	items, err := carts.ListByCartID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = carts.FindOwned(ctx, items[0].ID, bob.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	got, err := carts.FindOwned(ctx, items[0].ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ProductID)

	n, err := carts.DeleteByCartID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCartRepository_GetOrCreateByUserID(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.CreateUser(t, db, "alice")

	carts := infra.NewCartGormRepository(db)
	//フックで作られた既存カートを返す
	c1, err := carts.GetOrCreateByUserID(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&model.Cart{}, c1.ID).Error)
	c2, err := carts.GetOrCreateByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
	assert.Equal(t, u.ID, c2.UserID)
}

func newOrder(t *testing.T, orders *infra.OrderGormRepository, userID, addressID, total int64) int64 {
	t.Helper()
	o := model.Order{
		UserID:      userID,
		AddressID:   addressID,
		Total:       total,
		AmountDue:   total,
		PaymentMode: model.PaymentModeOnline,
		Status:      model.OrderStatusPending,
	}
	require.NoError(t, orders.Create(context.Background(), &o))
	return o.ID
}

func TestOrderRepository_MarkPaidOnlyOnce(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.CreateUser(t, db, "alice")
	a := dbtest.CreateAddress(t, db, u.ID)

	orders := infra.NewOrderGormRepository(db)
	id := newOrder(t, orders, u.ID, a.ID, 25000)

	ok, err := orders.MarkPaid(ctx, id, "pay_1", "sig_1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = orders.MarkPaid(ctx, id, "pay_2", "sig_2")
	require.NoError(t, err)
	assert.False(t, ok)

	o, err := orders.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), o.AmountDue)
	assert.Equal(t, int64(25000), o.AmountPaid)
	assert.Equal(t, "pay_1", o.GatewayPaymentID)
	assert.Equal(t, model.PaymentModeOnline, o.PaymentMode)
}

func TestOrderRepository_FindByGatewayOrderIDScopesByUser(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	a := dbtest.CreateAddress(t, db, alice.ID)

	orders := infra.NewOrderGormRepository(db)
	id := newOrder(t, orders, alice.ID, a.ID, 1000)
	set, err := orders.SetGatewayOrderIDIfEmpty(ctx, id, "order_ABC")
	require.NoError(t, err)
	require.True(t, set)

	//後から来たIDでは上書きしない
	set, err = orders.SetGatewayOrderIDIfEmpty(ctx, id, "order_XYZ")
	require.NoError(t, err)
	assert.False(t, set)

	_, err = orders.FindByGatewayOrderID(ctx, bob.ID, "order_ABC")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	o, err := orders.FindByGatewayOrderID(ctx, alice.ID, "order_ABC")
	require.NoError(t, err)
	assert.Equal(t, id, o.ID)
}

func TestOrderRepository_ListFilters(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.CreateUser(t, db, "alice")
	a := dbtest.CreateAddress(t, db, u.ID)

	orders := infra.NewOrderGormRepository(db)
	id1 := newOrder(t, orders, u.ID, a.ID, 100)
	newOrder(t, orders, u.ID, a.ID, 200)
	require.NoError(t, orders.UpdateStatus(ctx, id1, model.OrderStatusDelivered))

	list, total, err := orders.List(ctx, repo.OrderFilter{Page: 1, Limit: 10, Status: model.OrderStatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, id1, list[0].ID)

	// Limitなしは全件、新しい順
	bob := dbtest.CreateUser(t, db, "bob")
	newOrder(t, orders, bob.ID, dbtest.CreateAddress(t, db, bob.ID).ID, 300)
	list, total, err = orders.List(ctx, repo.OrderFilter{UserID: &u.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Greater(t, list[0].ID, list[1].ID)

	list, _, err = orders.List(ctx, repo.OrderFilter{UserID: &u.ID, Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id1, list[0].ID)
}

func TestOrderRepository_IdempotencyKeyAndItems(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.CreateUser(t, db, "alice")
	a := dbtest.CreateAddress(t, db, u.ID)
	p := dbtest.CreateProduct(t, db, "Blue Mug", 35000)
	orders := infra.NewOrderGormRepository(db)

	_, err := orders.FindByIdempotencyKey(ctx, u.ID, "k1")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	key := "k1"
	o := model.Order{UserID: u.ID, AddressID: a.ID, Total: 70000, AmountDue: 70000, PaymentMode: model.PaymentModeCOD, Status: model.OrderStatusPending, IdempotencyKey: &key}
	require.NoError(t, orders.Create(ctx, &o))

	dup := o
	dup.ID = 0
	assert.ErrorIs(t, orders.Create(ctx, &dup), repo.ErrConflict)

	got, err := orders.FindByIdempotencyKey(ctx, u.ID, "k1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	items := infra.NewOrderItemGormRepository(db)
	require.NoError(t, items.Insert(ctx, o.ID, []model.OrderItem{{ProductID: p.ID, ProductName: p.Name, Quantity: 2, Total: 70000}}))
	byOrder, err := items.ListByOrders(ctx, o.ID, 9999)
	require.NoError(t, err)
	require.Len(t, byOrder[o.ID], 1)
	assert.Equal(t, int64(2), byOrder[o.ID][0].Quantity)
	assert.Empty(t, byOrder[9999])
}

func TestAddressRepository_DeleteReferencedFails(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.CreateUser(t, db, "alice")
	a := dbtest.CreateAddress(t, db, u.ID)
	newOrder(t, infra.NewOrderGormRepository(db), u.ID, a.ID, 100)

	addresses := infra.NewAddressGormRepository(db)
	assert.Error(t, addresses.DeleteForUser(ctx, u.ID, a.ID))

	_, err := addresses.FindForUser(ctx, u.ID, a.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, addresses.DeleteForUser(ctx, u.ID, 9999), repo.ErrNotFound)
}

func TestAddressRepository_ScopedToOwner(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	addresses := infra.NewAddressGormRepository(db)

	a := model.Address{UserID: alice.ID, Address: "1 MG Road", City: "Pune", State: "MH", Country: "India", Pincode: "411001", Phone: "9000000000"}
	require.NoError(t, addresses.Create(ctx, &a))
	require.NotZero(t, a.ID)

	_, err := addresses.FindForUser(ctx, bob.ID, a.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	stolen := a
	stolen.UserID = bob.ID
	stolen.City = "Nagpur"
	assert.ErrorIs(t, addresses.UpdateForUser(ctx, stolen), repo.ErrNotFound)
	assert.ErrorIs(t, addresses.DeleteForUser(ctx, bob.ID, a.ID), repo.ErrNotFound)

	a.City = "Mumbai"
	require.NoError(t, addresses.UpdateForUser(ctx, a))
	got, err := addresses.FindForUser(ctx, alice.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", got.City)

	list, err := addresses.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProductRepository_FindBySlugsChecksCategory(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	p := dbtest.CreateProduct(t, db, "Blue Mug", 35000)
	other := dbtest.CreateProduct(t, db, "Green Pen", 1000)

	products := infra.NewProductGormRepository(db)

	var cat, otherCat model.Category
	require.NoError(t, db.First(&cat, p.CategoryID).Error)
	require.NoError(t, db.First(&otherCat, other.CategoryID).Error)

	got, err := products.FindBySlugs(ctx, cat.Slug, "blue-mug")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	require.NotNil(t, got.Category)

	_, err = products.FindBySlugs(ctx, otherCat.Slug, "blue-mug")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	list, err := products.ListByCategorySlug(ctx, "no-such-category")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUserRepository_UpdatePasswordBumpsTokenVersion(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.CreateUser(t, db, "alice")

	users := infra.NewUserGormRepository(db)
	require.NoError(t, users.UpdatePassword(ctx, u.ID, "newhash"))

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)
	assert.Equal(t, u.TokenVersion+1, got.TokenVersion)

	_, err = users.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repo.ErrUserNotFound)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.CreateUser(t, db, "alice")
	a := dbtest.CreateAddress(t, db, u.ID)

	tm := infra.NewTxManagerGorm(db)
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Orders().Create(ctx, &model.Order{
			UserID: u.ID, AddressID: a.ID, Total: 1, AmountDue: 1,
			PaymentMode: model.PaymentModeCOD, Status: model.OrderStatusPending,
		})
		require.NoError(t, err)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRefreshTokenRepository_MarkUsedOnceAndCleanup(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.CreateUser(t, db, "tok")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tokens := infra.NewRefreshTokenGormRepository(db)
	require.NoError(t, tokens.Create(ctx, &model.RefreshToken{ID: "live", UserID: u.ID, TokenHash: "h-live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, tokens.Create(ctx, &model.RefreshToken{ID: "old", UserID: u.ID, TokenHash: "h-old", ExpiresAt: now.Add(-time.Hour)}))

	require.NoError(t, tokens.MarkUsed(ctx, "live", now))
	//2回目は通らない
	assert.ErrorIs(t, tokens.MarkUsed(ctx, "live", now), repo.ErrRefreshTokenNotFound)

	got, err := tokens.FindByTokenHash(ctx, "h-live")
	require.NoError(t, err)
	require.NotNil(t, got.UsedAt)

	n, err := tokens.DeleteExpiredByUserID(ctx, u.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = tokens.FindByTokenHash(ctx, "h-old")
	assert.ErrorIs(t, err, repo.ErrRefreshTokenNotFound)

	assert.ErrorIs(t, tokens.DeleteByID(ctx, "missing"), repo.ErrRefreshTokenNotFound)
}

func TestAuditLogRepository_ListFiltersNewestFirst(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	admin := dbtest.CreateUser(t, db, "boss")
	logs := infra.NewAuditLogGormRepository(db)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []model.AuditAction{model.AuditActionUpdateOrderStatus, model.AuditActionForceLogout, model.AuditActionUpdateOrderStatus} {
		require.NoError(t, logs.Create(ctx, model.AuditLog{
			ActorUserID:  admin.ID,
			Action:       action,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   int64(i + 1),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	action := model.AuditActionUpdateOrderStatus
	got, err := logs.List(ctx, repo.AuditLogFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ResourceID)
	assert.Equal(t, int64(1), got[1].ResourceID)

	got, err = logs.List(ctx, repo.AuditLogFilter{ActorUserID: &admin.ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ResourceID)
}
