package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CategoryRepository interface {
	//名前順
	List(ctx context.Context) ([]model.Category, error)
	FindBySlug(ctx context.Context, slug string) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
}

type SellerRepository interface {
	List(ctx context.Context) ([]model.Seller, error)
	FindBySlug(ctx context.Context, slug string) (model.Seller, error)
	Create(ctx context.Context, s model.Seller) (model.Seller, error)
}
