package db

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/labstack/gommon/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/internal/config"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, GormConfig(cfg))
}

// DATABASE_URL があれば最優先で使う
func Dialector(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = fmt.Sprintf(
				"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				cfg.MySQLUser, cfg.MySQLPassword, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLDB,
			)
		}
		return mysql.Open(dsn), nil
	case "postgres", "":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
			)
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// 制約違反をgorm.ErrDuplicatedKeyなどに変換させる
func GormConfig(cfg config.Config) *gorm.Config {
	level := logger.Warn
	if !cfg.IsProd() {
		level = logger.Info
	}

	return &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger(os.Stdout, level),
	}
}

// SQLログもechoと同じgommonのロガーで出す
func gormLogger(out io.Writer, level logger.LogLevel) logger.Interface {
	l := log.New("gorm")
	l.SetOutput(out)
	l.SetHeader("${time_rfc3339} ${prefix}")
	return logger.New(l, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
