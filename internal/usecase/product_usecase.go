package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 管理者の商品登録・更新・削除。商品と監査ログは同じトランザクションで書く
type ProductUsecase struct {
	tx  repo.TransactionManager
	now func() time.Time
}

// DI
func NewProductUsecase(tx repo.TransactionManager) *ProductUsecase {
	return &ProductUsecase{tx: tx, now: time.Now}
}

type AdminProductInput struct {
	Name        string
	Slug        string
	Description string
	CategoryID  int64
	SellerID    int64
	Price       int64
}

func (in AdminProductInput) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = msgRequired
	}
	if in.CategoryID <= 0 {
		fields["category"] = msgRequired
	}
	if in.SellerID <= 0 {
		fields["seller"] = msgRequired
	}
	if in.Price < 0 {
		fields["price"] = "Ensure this value is greater than or equal to 0."
	}
	return newValidationError(fields)
}

func (in AdminProductInput) toModel() model.Product {
	name := strings.TrimSpace(in.Name)
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = model.Slugify(name)
	}
	return model.Product{
		Name:        name,
		Slug:        slug,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		SellerID:    in.SellerID,
		Price:       in.Price,
	}
}

func productAudit(p model.Product) map[string]interface{} {
	return map[string]interface{}{
		"name":     p.Name,
		"slug":     p.Slug,
		"category": p.CategoryID,
		"seller":   p.SellerID,
		"price":    p.Price,
	}
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	p := in.toModel()
	p.UserID = adminUserID

	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		created, err = r.Products().Create(ctx, p)
		if errors.Is(err, repo.ErrConflict) {
			//名前・slugの重複 or カテゴリ・出品者が無い
			return NewHTTPError(http.StatusConflict, "product conflicts with existing data")
		}
		if err != nil {
			return dbError(err)
		}

		return u.audit(ctx, r, model.AuditLog{
			ActorUserID: adminUserID,
			Action:      model.AuditActionCreateProduct,
			ResourceID:  created.ID,
			After:       toAuditJSON(productAudit(created)),
		})
	})
	if err != nil {
		return model.Product{}, err
	}
	return created, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminProductInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := in.validate(); err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(err)
		}

		p := in.toModel()
		p.ID = productID
		err = r.Products().Update(ctx, p)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return NewHTTPError(http.StatusNotFound, "not found")
		case errors.Is(err, repo.ErrConflict):
			return NewHTTPError(http.StatusConflict, "product conflicts with existing data")
		case err != nil:
			return dbError(err)
		}

		return u.audit(ctx, r, model.AuditLog{
			ActorUserID: adminUserID,
			Action:      model.AuditActionUpdateProduct,
			ResourceID:  productID,
			Before:      toAuditJSON(productAudit(before)),
			After:       toAuditJSON(productAudit(p)),
		})
	})
}

// カート明細・注文明細も消える
func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(err)
		}

		if err := r.Products().Delete(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return dbError(err)
		}

		return u.audit(ctx, r, model.AuditLog{
			ActorUserID: adminUserID,
			Action:      model.AuditActionDeleteProduct,
			ResourceID:  productID,
			Before:      toAuditJSON(productAudit(before)),
		})
	})
}

// 失敗したら商品の変更ごとロールバックされる
func (u *ProductUsecase) audit(ctx context.Context, r repo.TxRepos, log model.AuditLog) error {
	log.ResourceType = model.AuditResourceProduct
	log.CreatedAt = u.now()
	if err := r.AuditLogs().Create(ctx, log); err != nil {
		return dbError(err)
	}
	return nil
}
