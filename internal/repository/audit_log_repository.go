package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

const (
	DefaultAuditLogLimit = 50
	MaxAuditLogLimit     = 100
)

// 管理画面の監査ログ検索。nilの項目は絞り込まない
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// limit/offsetを範囲内に丸める
func (f AuditLogFilter) Normalize() AuditLogFilter {
	if f.Limit < 1 || f.Limit > MaxAuditLogLimit {
		f.Limit = DefaultAuditLogLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// 注文ステータス変更・商品管理・強制ログアウトの記録
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
