package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/db/dbtest"
	"storefront/internal/infra/payment"
	infrarepo "storefront/internal/infra/repository"
	"storefront/internal/infra/storage"
	"storefront/internal/middleware"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"
	"storefront/internal/validator"
)

const (
	testJWTSecret = "handler-test-secret"
	gatewaySecret = "rzp_test_secret"
)

type fakeGateway struct {
	mu        sync.Mutex
	createErr error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req usecase.GatewayOrderRequest) (usecase.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return usecase.GatewayOrder{}, g.createErr
	}
	return usecase.GatewayOrder{ID: "order_" + req.Receipt, Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

func (g *fakeGateway) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) error {
	return payment.VerifySignature(gatewaySecret, gatewayOrderID, paymentID, signature)
}

func (g *fakeGateway) fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createErr = err
}

// main.goと同じ組み立てをSQLiteで
type testServer struct {
	e        *echo.Echo
	db       *gorm.DB
	gateway  *fakeGateway
	issuer   *auth.JWTIssuer
	mediaDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := dbtest.New(t)
	cfg := config.Config{JWTSecret: testJWTSecret, PageSize: 5, PaymentCurrency: "INR"}
	gw := &fakeGateway{}
	mediaDir := t.TempDir()

	users := infrarepo.NewUserGormRepository(db)
	profiles := infrarepo.NewProfileGormRepository(db)
	tokens := infrarepo.NewRefreshTokenGormRepository(db)
	audit := infrarepo.NewAuditLogGormRepository(db)
	categories := infrarepo.NewCategoryGormRepository(db)
	sellers := infrarepo.NewSellerGormRepository(db)
	products := infrarepo.NewProductGormRepository(db)
	carts := infrarepo.NewCartGormRepository(db)
	orders := infrarepo.NewOrderGormRepository(db)
	addresses := infrarepo.NewAddressGormRepository(db)
	enquiries := infrarepo.NewEnquiryGormRepository(db)
	tx := infrarepo.NewTxManagerGorm(db)

	hasher := auth.NewBcryptPasswordHasher(bcrypt.MinCost)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(testJWTSecret, auth.AccessTokenTTL)
	clock := auth.SystemClock{}
	ids := auth.UUIDGenerator{}
	v := validator.NewAuthValidator()

	e := echo.New()
	handler.RegisterAPI(e, cfg, users, handler.Handlers{
		Catalog: handler.NewCatalogHandler(usecase.NewCatalogUsecase(categories, sellers, products, cfg.PageSize)),
		Auth: handler.NewAuthHandler(cfg,
			auth.NewRegisterUserUsecase(users, hasher, clock),
			auth.NewLoginUsecase(users, tokens, verifier, issuer, ids, clock, auth.RefreshTokenTTL),
			auth.NewRefreshUsecase(users, tokens, issuer, ids, clock, auth.RefreshTokenTTL),
			auth.NewLogoutUsecase(tokens),
			v, auth.RefreshTokenTTL),
		Cart:         handler.NewCartHandler(usecase.NewCartUsecase(carts, carts, products)),
		Checkout:     handler.NewCheckoutHandler(usecase.NewCheckoutUsecase(tx, addresses, orders, gw, "INR"), usecase.NewPaymentUsecase(tx, orders, gw, "INR")),
		Order:        handler.NewOrderHandler(usecase.NewOrderUsecase(tx)),
		Address:      handler.NewAddressHandler(usecase.NewAddressUsecase(addresses)),
		Profile:      handler.NewProfileHandler(usecase.NewProfileUsecase(users, profiles, tokens, storage.NewLocalStore(mediaDir), hasher, verifier)),
		Enquiry:      handler.NewEnquiryHandler(usecase.NewEnquiryUsecase(enquiries)),
		AdminOrder:   handler.NewAdminOrderHandler(usecase.NewAdminOrderUsecase(tx, audit)),
		AdminProduct: handler.NewAdminProductHandler(usecase.NewProductUsecase(tx)),
		AdminUser:    handler.NewAdminUserHandler(auth.NewForceLogoutUsecase(users, tokens, audit, clock), v),
	})

	return &testServer{e: e, db: db, gateway: gw, issuer: issuer, mediaDir: mediaDir}
}

// token_version=0 のユーザー用JWT
func (s *testServer) bearer(t *testing.T, u model.User) string {
	t.Helper()
	tok, _, err := s.issuer.Issue(u.ID, u.Role, u.TokenVersion, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok
}

func (s *testServer) admin(t *testing.T, username string) model.User {
	t.Helper()
	u := dbtest.CreateUser(t, s.db, username)
	require.NoError(t, s.db.Model(&u).Update("role", model.RoleAdmin).Error)
	u.Role = model.RoleAdmin
	return u
}

type request struct {
	method  string
	path    string
	body    interface{}
	auth    string
	headers map[string]string
	cookies []*http.Cookie
}

func (s *testServer) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.auth != "" {
		req.Header.Set(echo.HeaderAuthorization, r.auth)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func csrfHeaders(c *http.Cookie) map[string]string {
	return map[string]string{middleware.CSRFHeaderName: c.Value}
}

func idPath(prefix string, id int64, suffix string) string {
	return prefix + strconv.FormatInt(id, 10) + suffix
}
