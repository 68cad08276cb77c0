package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db/dbtest"
	infrarepo "storefront/internal/infra/repository"
	"storefront/internal/infra/session"
	"storefront/internal/infra/storage"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"
	"storefront/internal/validator"
	"storefront/internal/web"
)

// 署名検証は常に失敗する。downの間は注文作成も失敗する
type stubGateway struct {
	down bool
}

func (g *stubGateway) CreateOrder(ctx context.Context, req usecase.GatewayOrderRequest) (usecase.GatewayOrder, error) {
	if g.down {
		return usecase.GatewayOrder{}, errors.New("gateway down")
	}
	return usecase.GatewayOrder{ID: "order_" + req.Receipt, Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt}, nil
}

func (g *stubGateway) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) error {
	return usecase.ErrValidation
}

type testSite struct {
	e        *echo.Echo
	db       *gorm.DB
	sessions *session.RedisStore
	gateway  *stubGateway
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()

	db := dbtest.New(t)
	mr := miniredis.RunT(t)
	rdb := session.NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	sessions := session.NewRedisStore(rdb, 0)

	cfg := config.Config{PageSize: 5, PaymentCurrency: "INR"}

	users := infrarepo.NewUserGormRepository(db)
	profiles := infrarepo.NewProfileGormRepository(db)
	tokens := infrarepo.NewRefreshTokenGormRepository(db)
	categories := infrarepo.NewCategoryGormRepository(db)
	sellers := infrarepo.NewSellerGormRepository(db)
	products := infrarepo.NewProductGormRepository(db)
	carts := infrarepo.NewCartGormRepository(db)
	orders := infrarepo.NewOrderGormRepository(db)
	addresses := infrarepo.NewAddressGormRepository(db)
	enquiries := infrarepo.NewEnquiryGormRepository(db)
	tx := infrarepo.NewTxManagerGorm(db)
	gateway := &stubGateway{}

	hasher := auth.NewBcryptPasswordHasher(bcrypt.MinCost)
	verifier := auth.NewBcryptPasswordVerifier()
	clock := auth.SystemClock{}

	pages := web.NewPages(cfg, web.Deps{
		Catalog:  usecase.NewCatalogUsecase(categories, sellers, products, cfg.PageSize),
		Cart:     usecase.NewCartUsecase(carts, carts, products),
		Checkout: usecase.NewCheckoutUsecase(tx, addresses, orders, gateway, "INR"),
		Payment:  usecase.NewPaymentUsecase(tx, orders, gateway, "INR"),
		Orders:   usecase.NewOrderUsecase(tx),
		Address:  usecase.NewAddressUsecase(addresses),
		Profile:  usecase.NewProfileUsecase(users, profiles, tokens, storage.NewLocalStore(t.TempDir()), hasher, verifier),
		Enquiry:  usecase.NewEnquiryUsecase(enquiries),
		Register: auth.NewRegisterUserUsecase(users, hasher, clock),
		Login:    auth.NewSessionLoginUsecase(users, verifier, clock),
	}, sessions, validator.NewAuthValidator())

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	pages.RegisterRoutes(e)

	return &testSite{e: e, db: db, sessions: sessions, gateway: gateway}
}

func (s *testSite) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testSite) post(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// GETでcsrftoken Cookieを受け取る。フォームにも同じ値を入れる
func (s *testSite) csrf(t *testing.T) *http.Cookie {
	t.Helper()
	rec := s.get(t, "/sign-in")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrftoken" {
			return c
		}
	}
	t.Fatal("csrftoken cookie not set")
	return nil
}

// ログイン済みセッションを直接作る
func (s *testSite) login(t *testing.T, u model.User) *http.Cookie {
	t.Helper()
	id, err := s.sessions.Create(context.Background(), session.Session{UserID: u.ID, Username: u.Username})
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: id}
}

func withCSRF(tok *http.Cookie, form url.Values) url.Values {
	form.Set("csrfmiddlewaretoken", tok.Value)
	return form
}

func TestLoginRequired_Redirects(t *testing.T) {
	s := newTestSite(t)

	rec := s.get(t, "/cart")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/sign-in?next=%2Fcart", rec.Header().Get(echo.HeaderLocation))
}

func TestSignUpSignInSignOut(t *testing.T) {
	s := newTestSite(t)
	tok := s.csrf(t)

	rec := s.post(t, "/sign-up", withCSRF(tok, url.Values{
		"username": {"priya"},
		"email":    {"priya@example.com"},
		"password": {"s3cret-pass"},
	}), tok)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/sign-in", rec.Header().Get(echo.HeaderLocation))

	//同じユーザー名はフォームに戻る
	rec = s.post(t, "/sign-up", withCSRF(tok, url.Values{
		"username": {"priya"},
		"email":    {"other@example.com"},
		"password": {"s3cret-pass"},
	}), tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")

	rec = s.post(t, "/sign-in", withCSRF(tok, url.Values{
		"username": {"priya"},
		"password": {"wrong-pass"},
	}), tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")

	rec = s.post(t, "/sign-in", withCSRF(tok, url.Values{
		"username": {"priya@example.com"},
		"password": {"s3cret-pass"},
		"next":     {"/profile"},
	}), tok)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/profile", rec.Header().Get(echo.HeaderLocation))

	var sid *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			sid = c
		}
	}
	require.NotNil(t, sid)
	assert.True(t, sid.HttpOnly)

	rec = s.get(t, "/profile", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "priya@example.com")

	rec = s.post(t, "/sign-out", withCSRF(tok, url.Values{}), tok, sid)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	_, err := s.sessions.Get(context.Background(), sid.Value)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestSignIn_OpenRedirectIgnored(t *testing.T) {
	s := newTestSite(t)
	tok := s.csrf(t)

	rec := s.post(t, "/sign-up", withCSRF(tok, url.Values{
		"username": {"ravi"},
		"email":    {"ravi@example.com"},
		"password": {"s3cret-pass"},
	}), tok)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = s.post(t, "/sign-in", withCSRF(tok, url.Values{
		"username": {"ravi"},
		"password": {"s3cret-pass"},
		"next":     {"https://evil.example/"},
	}), tok)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestPost_RequiresCSRFToken(t *testing.T) {
	s := newTestSite(t)

	rec := s.post(t, "/sign-in", url.Values{"username": {"a"}, "password": {"b"}})
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusForbidden}, rec.Code)
}

func TestHomeEnquiry(t *testing.T) {
	s := newTestSite(t)
	tok := s.csrf(t)

	rec := s.post(t, "/", withCSRF(tok, url.Values{
		"name":    {"Asha"},
		"email":   {"asha@example.com"},
		"subject": {"Bulk order"},
		"message": {"Do you ship to Pune?"},
	}), tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "received your enquiry")

	var got []model.Enquiry
	require.NoError(t, s.db.Find(&got).Error)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].UserID)
	assert.Equal(t, "Bulk order", got[0].Subject)

	rec = s.post(t, "/", withCSRF(tok, url.Values{"name": {"Asha"}}), tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartAndCODCheckout(t *testing.T) {
	s := newTestSite(t)
	tok := s.csrf(t)

	u := dbtest.CreateUser(t, s.db, "meera")
	addr := dbtest.CreateAddress(t, s.db, u.ID)
	p := dbtest.CreateProduct(t, s.db, "Masala Chai", 24900)
	sid := s.login(t, u)

	rec := s.post(t, "/cart/add", withCSRF(tok, url.Values{
		"product_id": {strconv.FormatInt(p.ID, 10)},
		"quantity":   {"2"},
	}), tok, sid)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = s.get(t, "/cart", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Masala Chai")
	assert.Contains(t, rec.Body.String(), "₹498.00")

	rec = s.get(t, "/checkout", sid)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.post(t, "/checkout", withCSRF(tok, url.Values{
		"address_id":   {strconv.FormatInt(addr.ID, 10)},
		"payment_mode": {"Cash on Delivery"},
	}), tok, sid)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	loc := rec.Header().Get(echo.HeaderLocation)
	assert.True(t, strings.HasPrefix(loc, "/profile/order/"), loc)

	rec = s.get(t, loc, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Masala Chai")

	rec = s.get(t, "/profile/order", sid)
	assert.Equal(t, http.StatusOK, rec.Code)

	//カートは空になる
	rec = s.get(t, "/cart", sid)
	assert.Contains(t, rec.Body.String(), "Your cart is empty")
}

func TestOrderPage_ForeignOrderIsNotFound(t *testing.T) {
	s := newTestSite(t)
	tok := s.csrf(t)

	owner := dbtest.CreateUser(t, s.db, "owner")
	addr := dbtest.CreateAddress(t, s.db, owner.ID)
	p := dbtest.CreateProduct(t, s.db, "Kulfi", 5000)
	ownerSID := s.login(t, owner)

	rec := s.post(t, "/cart/add", withCSRF(tok, url.Values{"product_id": {strconv.FormatInt(p.ID, 10)}}), tok, ownerSID)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = s.post(t, "/checkout", withCSRF(tok, url.Values{
		"address_id":   {strconv.FormatInt(addr.ID, 10)},
		"payment_mode": {"Cash on Delivery"},
	}), tok, ownerSID)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get(echo.HeaderLocation)

	other := s.login(t, dbtest.CreateUser(t, s.db, "other"))
	rec = s.get(t, loc, other)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderPage_PayNowAfterGatewayFailure(t *testing.T) {
	s := newTestSite(t)
	tok := s.csrf(t)

	u := dbtest.CreateUser(t, s.db, "kavya")
	addr := dbtest.CreateAddress(t, s.db, u.ID)
	p := dbtest.CreateProduct(t, s.db, "Filter Coffee", 15000)
	sid := s.login(t, u)

	rec := s.post(t, "/cart/add", withCSRF(tok, url.Values{"product_id": {strconv.FormatInt(p.ID, 10)}}), tok, sid)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	s.gateway.down = true
	rec = s.post(t, "/checkout", withCSRF(tok, url.Values{
		"address_id":   {strconv.FormatInt(addr.ID, 10)},
		"payment_mode": {"Online Payment"},
	}), tok, sid)
	require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Pay now")

	var o model.Order
	require.NoError(t, s.db.Where("user_id = ?", u.ID).First(&o).Error)
	orderPath := "/profile/order/" + strconv.FormatInt(o.ID, 10)

	//ゲートウェイが落ちたままなら再度502
	rec = s.post(t, orderPath+"/pay", withCSRF(tok, url.Values{}), tok, sid)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	s.gateway.down = false
	rec = s.post(t, orderPath+"/pay", withCSRF(tok, url.Values{}), tok, sid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Complete your payment")
	assert.Contains(t, rec.Body.String(), "order_")

	//他人の注文は払えない
	other := s.login(t, dbtest.CreateUser(t, s.db, "other"))
	rec = s.post(t, orderPath+"/pay", withCSRF(tok, url.Values{}), tok, other)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderPage_NoPayNowForCOD(t *testing.T) {
	s := newTestSite(t)
	tok := s.csrf(t)

	u := dbtest.CreateUser(t, s.db, "ravi")
	addr := dbtest.CreateAddress(t, s.db, u.ID)
	p := dbtest.CreateProduct(t, s.db, "Jalebi", 8000)
	sid := s.login(t, u)

	rec := s.post(t, "/cart/add", withCSRF(tok, url.Values{"product_id": {strconv.FormatInt(p.ID, 10)}}), tok, sid)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = s.post(t, "/checkout", withCSRF(tok, url.Values{
		"address_id":   {strconv.FormatInt(addr.ID, 10)},
		"payment_mode": {"Cash on Delivery"},
	}), tok, sid)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get(echo.HeaderLocation)

	rec = s.get(t, loc, sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Pay now")

	rec = s.post(t, loc+"/pay", withCSRF(tok, url.Values{}), tok, sid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddressPages(t *testing.T) {
	s := newTestSite(t)
	tok := s.csrf(t)
	u := dbtest.CreateUser(t, s.db, "kiran")
	sid := s.login(t, u)

	rec := s.post(t, "/profile/address", withCSRF(tok, url.Values{
		"address": {"4 Park Street"},
		"city":    {"Kolkata"},
		"state":   {"West Bengal"},
		"pincode": {"700016"},
		"phone":   {"9876543210"},
	}), tok, sid)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = s.get(t, "/profile/address", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "4 Park Street")

	var a model.Address
	require.NoError(t, s.db.Where("user_id = ?", u.ID).First(&a).Error)

	rec = s.post(t, "/profile/address/"+strconv.FormatInt(a.ID, 10)+"/delete", withCSRF(tok, url.Values{}), tok, sid)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	//必須項目が空
	rec = s.post(t, "/profile/address", withCSRF(tok, url.Values{"city": {"Kolkata"}}), tok, sid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileUpdate(t *testing.T) {
	s := newTestSite(t)
	tok := s.csrf(t)
	u := dbtest.CreateUser(t, s.db, "dev")
	sid := s.login(t, u)

	rec := s.post(t, "/profile/update", withCSRF(tok, url.Values{
		"first_name": {"Dev"},
		"last_name":  {"Patel"},
		"dob":        {"1990-01-31"},
	}), tok, sid)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = s.get(t, "/profile", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dev Patel")
	assert.Contains(t, rec.Body.String(), "1990-01-31")

	rec = s.post(t, "/profile/update", withCSRF(tok, url.Values{"dob": {"31/01/1990"}}), tok, sid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
