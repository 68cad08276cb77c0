package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configはアプリ全体の設定
// CONFIG_FILE(YAML) → 環境変数 の順に上書きする
type Config struct {
	Port         string `yaml:"port"`          // サーバーポート（8080）
	GoEnv        string `yaml:"go_env"`        // dev/prod
	APIDomain    string `yaml:"api_domain"`    // cookieのドメイン
	FEURL        string `yaml:"fe_url"`        // CORS許可オリジン
	CookieSecure bool   `yaml:"cookie_secure"` // cookieのSecure属性

	DBDriver    string `yaml:"db_driver"` // postgres | mysql
	DatabaseURL string `yaml:"database_url"`

	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresDB       string `yaml:"postgres_db"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     int    `yaml:"postgres_port"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`

	MySQLUser     string `yaml:"mysql_user"`
	MySQLPassword string `yaml:"mysql_password"`
	MySQLDB       string `yaml:"mysql_db"`
	MySQLHost     string `yaml:"mysql_host"`
	MySQLPort     int    `yaml:"mysql_port"`

	JWTSecret string `yaml:"jwt_secret"` // JWT署名シークレット

	RazorpayKey     string `yaml:"razorpay_key"`
	RazorpaySecret  string `yaml:"razorpay_secret"`
	RazorpayBaseURL string `yaml:"razorpay_base_url"`
	PaymentCurrency string `yaml:"payment_currency"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	ImageStore      string `yaml:"image_store"` // s3 | local
	S3Bucket        string `yaml:"s3_bucket"`
	S3PublicBaseURL string `yaml:"s3_public_base_url"`
	UploadDir       string `yaml:"upload_dir"`

	PageSize int `yaml:"page_size"` // 商品一覧の1ページ件数（最大5）
}

const MaxPageSize = 5

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func defaults() Config {
	return Config{
		Port:            "8080",
		GoEnv:           "dev",
		FEURL:           "http://localhost:3000",
		CookieSecure:    true,
		DBDriver:        "postgres",
		PostgresUser:    "postgres",
		PostgresDB:      "storefront",
		PostgresHost:    "localhost",
		PostgresPort:    5432,
		PostgresSSLMode: "disable",
		MySQLUser:       "root",
		MySQLDB:         "storefront",
		MySQLHost:       "localhost",
		MySQLPort:       3306,
		RazorpayBaseURL: "https://api.razorpay.com",
		PaymentCurrency: "INR",
		RedisAddr:       "localhost:6379",
		ImageStore:      "local",
		UploadDir:       "media",
		PageSize:        MaxPageSize,
	}
}

// Loadは環境変数（と任意のYAML）から読む
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read CONFIG_FILE: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse CONFIG_FILE: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.IsProd() {
		if cfg.RazorpayKey == "" {
			return Config{}, fmt.Errorf("RAZORPAY_KEY is required")
		}
		if cfg.RazorpaySecret == "" {
			return Config{}, fmt.Errorf("RAZORPAY_SECRET is required")
		}
	}
	switch cfg.DBDriver {
	case "postgres", "mysql":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or mysql")
	}
	switch cfg.ImageStore {
	case "local", "s3":
	default:
		return Config{}, fmt.Errorf("IMAGE_STORE must be local or s3")
	}
	if cfg.ImageStore == "s3" && cfg.S3Bucket == "" {
		return Config{}, fmt.Errorf("S3_BUCKET is required")
	}
	if cfg.PageSize < 1 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"PORT":               &cfg.Port,
		"GO_ENV":             &cfg.GoEnv,
		"API_DOMAIN":         &cfg.APIDomain,
		"FE_URL":             &cfg.FEURL,
		"DB_DRIVER":          &cfg.DBDriver,
		"DATABASE_URL":       &cfg.DatabaseURL,
		"POSTGRES_USER":      &cfg.PostgresUser,
		"POSTGRES_PASSWORD":  &cfg.PostgresPassword,
		"POSTGRES_DB":        &cfg.PostgresDB,
		"POSTGRES_HOST":      &cfg.PostgresHost,
		"POSTGRES_SSLMODE":   &cfg.PostgresSSLMode,
		"MYSQL_USER":         &cfg.MySQLUser,
		"MYSQL_PASSWORD":     &cfg.MySQLPassword,
		"MYSQL_DB":           &cfg.MySQLDB,
		"MYSQL_HOST":         &cfg.MySQLHost,
		"JWT_SECRET":         &cfg.JWTSecret,
		"RAZORPAY_KEY":       &cfg.RazorpayKey,
		"RAZORPAY_SECRET":    &cfg.RazorpaySecret,
		"RAZORPAY_BASE_URL":  &cfg.RazorpayBaseURL,
		"PAYMENT_CURRENCY":   &cfg.PaymentCurrency,
		"REDIS_ADDR":         &cfg.RedisAddr,
		"REDIS_PASSWORD":     &cfg.RedisPassword,
		"IMAGE_STORE":        &cfg.ImageStore,
		"S3_BUCKET":          &cfg.S3Bucket,
		"S3_PUBLIC_BASE_URL": &cfg.S3PublicBaseURL,
		"UPLOAD_DIR":         &cfg.UploadDir,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"POSTGRES_PORT": &cfg.PostgresPort,
		"MYSQL_PORT":    &cfg.MySQLPort,
		"REDIS_DB":      &cfg.RedisDB,
		"PAGE_SIZE":     &cfg.PageSize,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be number: %w", key, err)
		}
		*dst = i
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE must be bool: %w", err)
		}
		cfg.CookieSecure = b
	}
	return nil
}
