package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/datatypes"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	now       func() time.Time
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo, now: time.Now}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

type AdminOrderList struct {
	Count   int64         `json:"count"`
	Results []OrderOutput `json:"results"`
}

const exportBatch = 100

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.OrderFilter) (AdminOrderList, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return AdminOrderList{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderList{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !f.Status.Valid() {
		return AdminOrderList{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out AdminOrderList

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, f)
		if err != nil {
			return dbError(err)
		}

		outs, err := withItems(ctx, r.OrderItems(), orders)
		if err != nil {
			return err
		}
		out = AdminOrderList{Count: total, Results: outs}
		return nil
	})

	if err != nil {
		return AdminOrderList{}, err
	}
	return out, nil
}

// 条件に合う注文を全部（xlsx出力用）
func (u *AdminOrderUsecase) ExportRows(ctx context.Context, f repo.OrderFilter) ([]OrderOutput, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	f.Limit = exportBatch
	all := []OrderOutput{}
	for page := 1; ; page++ {
		f.Page = page
		res, err := u.List(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Results...)
		if len(res.Results) < exportBatch || int64(len(all)) >= res.Count {
			break
		}
	}
	return all, nil
}

// Pendingからだけ変更できる
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !newStatus.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(err)
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}
		// 終端ガード
		if !o.Status.CanTransitionTo(newStatus) {
			return NewHTTPError(http.StatusBadRequest, "cannot change "+strings.ToLower(string(o.Status))+" order")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return dbError(err)
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			Before:       statusJSON(o.Status),
			After:        statusJSON(newStatus),
			CreatedAt:    u.now(),
		}); err != nil {
			return dbError(err)
		}

		return nil
	})
}

// 監査ログ一覧
func (u *AdminOrderUsecase) AuditLogs(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	list, err := u.auditRepo.List(ctx, f.Normalize())
	if err != nil {
		return nil, dbError(err)
	}
	return list, nil
}

func statusJSON(s model.OrderStatus) datatypes.JSON {
	b, _ := json.Marshal(map[string]string{"status": string(s)})
	return datatypes.JSON(b)
}

// 監査ログ用にmapをJSONへ
func toAuditJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// 期間パラメータ。handlerでパースして渡す
func ParseDateTime(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, true
	}
	return nil, false
}
