package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// refresh tokenはハッシュだけ保存する
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	// 未使用・未失効のときだけused_atを入れる。入らなければErrRefreshTokenNotFound
	MarkUsed(ctx context.Context, tokenID string, at time.Time) error
	DeleteByID(ctx context.Context, tokenID string) error
	// 強制ログアウト・再利用検知・パスワード変更
	DeleteAllByUserID(ctx context.Context, userID int64) error
	// 期限切れの掃除。消した件数を返す
	DeleteExpiredByUserID(ctx context.Context, userID int64, now time.Time) (int64, error)
}
