package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

// ログイン名はusernameとemailのどちらでも引ける
type UserRepository interface {
	// ProfileとCartはAfterCreateフックで一緒に作られる
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// last_login・is_active・roleなど行ごと保存
	Update(ctx context.Context, user *model.User) error
	UpdateNames(ctx context.Context, userID int64, firstName, lastName string) error
	// token_versionも進めて発行済みJWTを失効させる
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
