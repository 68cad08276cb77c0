package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/payment"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/session"
	"storefront/internal/infra/storage"
	"storefront/internal/server"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"
	"storefront/internal/validator"
	"storefront/internal/web"
)

func main() {
	//.envは無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := gormDB.AutoMigrate(model.All()...); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//ページ用セッション
	rdb := session.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}
	sessions := session.NewRedisStore(rdb, session.DefaultTTL)

	//プロフィール画像の保存先
	var images usecase.ImageStore
	mediaDir := ""
	if cfg.ImageStore == "s3" {
		s3Store, err := storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3PublicBaseURL)
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
		images = s3Store
	} else {
		local := storage.NewLocalStore(cfg.UploadDir)
		images = local
		mediaDir = local.Dir()
	}

	gateway := payment.NewRazorpayClient(cfg.RazorpayBaseURL, cfg.RazorpayKey, cfg.RazorpaySecret)

	//Repository（GORM実装）生成
	users := infraRepo.NewUserGormRepository(gormDB)
	profiles := infraRepo.NewProfileGormRepository(gormDB)
	tokens := infraRepo.NewRefreshTokenGormRepository(gormDB)
	audit := infraRepo.NewAuditLogGormRepository(gormDB)
	categories := infraRepo.NewCategoryGormRepository(gormDB)
	sellers := infraRepo.NewSellerGormRepository(gormDB)
	products := infraRepo.NewProductGormRepository(gormDB)
	carts := infraRepo.NewCartGormRepository(gormDB)
	orders := infraRepo.NewOrderGormRepository(gormDB)
	addresses := infraRepo.NewAddressGormRepository(gormDB)
	enquiries := infraRepo.NewEnquiryGormRepository(gormDB)
	tx := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	hasher := auth.NewBcryptPasswordHasher(bcrypt.DefaultCost)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, auth.AccessTokenTTL)
	clock := auth.SystemClock{}
	ids := auth.UUIDGenerator{}
	v := validator.NewAuthValidator()

	//Usecase生成
	catalogUC := usecase.NewCatalogUsecase(categories, sellers, products, cfg.PageSize)
	cartUC := usecase.NewCartUsecase(carts, carts, products)
	checkoutUC := usecase.NewCheckoutUsecase(tx, addresses, orders, gateway, cfg.PaymentCurrency)
	paymentUC := usecase.NewPaymentUsecase(tx, orders, gateway, cfg.PaymentCurrency)
	orderUC := usecase.NewOrderUsecase(tx)
	addressUC := usecase.NewAddressUsecase(addresses)
	profileUC := usecase.NewProfileUsecase(users, profiles, tokens, images, hasher, verifier)
	enquiryUC := usecase.NewEnquiryUsecase(enquiries)
	registerUC := auth.NewRegisterUserUsecase(users, hasher, clock)

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("templates: %v", err)
	}
	e := server.New(cfg, renderer, mediaDir)

	//JSON API
	handler.RegisterAPI(e, cfg, users, handler.Handlers{
		Catalog: handler.NewCatalogHandler(catalogUC),
		Auth: handler.NewAuthHandler(cfg,
			registerUC,
			auth.NewLoginUsecase(users, tokens, verifier, issuer, ids, clock, auth.RefreshTokenTTL),
			auth.NewRefreshUsecase(users, tokens, issuer, ids, clock, auth.RefreshTokenTTL),
			auth.NewLogoutUsecase(tokens),
			v, auth.RefreshTokenTTL),
		Cart:         handler.NewCartHandler(cartUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC, paymentUC),
		Order:        handler.NewOrderHandler(orderUC),
		Address:      handler.NewAddressHandler(addressUC),
		Profile:      handler.NewProfileHandler(profileUC),
		Enquiry:      handler.NewEnquiryHandler(enquiryUC),
		AdminOrder:   handler.NewAdminOrderHandler(usecase.NewAdminOrderUsecase(tx, audit)),
		AdminProduct: handler.NewAdminProductHandler(usecase.NewProductUsecase(tx)),
		AdminUser:    handler.NewAdminUserHandler(auth.NewForceLogoutUsecase(users, tokens, audit, clock), v),
	})

	//HTMLページ
	web.NewPages(cfg, web.Deps{
		Catalog:  catalogUC,
		Cart:     cartUC,
		Checkout: checkoutUC,
		Payment:  paymentUC,
		Orders:   orderUC,
		Address:  addressUC,
		Profile:  profileUC,
		Enquiry:  enquiryUC,
		Register: registerUC,
		Login:    auth.NewSessionLoginUsecase(users, verifier, clock),
	}, sessions, v).RegisterRoutes(e)

	//Server起動
	addr := cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}
	if err := server.Run(ctx, e, addr); err != nil {
		e.Logger.Fatal(err)
	}
}
