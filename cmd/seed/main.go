package main

import (
	"flag"
	"math/rand"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	auth "storefront/internal/usecase/auth_usecase"
)

func main() {
	categories := flag.Int("categories", 5, "number of categories")
	sellers := flag.Int("sellers", 5, "number of sellers")
	products := flag.Int("products", 20, "number of products")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := gormDB.AutoMigrate(model.All()...); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	log.Info("Seeding data...")
	s := newSeeder(gormDB, auth.NewBcryptPasswordHasher(bcrypt.DefaultCost), rand.New(rand.NewSource(time.Now().UnixNano())))
	res, err := s.run(*categories, *sellers, *products)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Infof("Seeding completed! categories=%d sellers=%d products=%d", res.categories, res.sellers, res.products)
}
