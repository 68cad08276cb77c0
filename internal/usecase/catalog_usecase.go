package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type CatalogUsecase struct {
	categories repo.CategoryRepository
	sellers    repo.SellerRepository
	products   repo.ProductRepository
	pageSize   int
}

// DI
func NewCatalogUsecase(
	categories repo.CategoryRepository,
	sellers repo.SellerRepository,
	products repo.ProductRepository,
	pageSize int,
) *CatalogUsecase {
	return &CatalogUsecase{
		categories: categories,
		sellers:    sellers,
		products:   products,
		pageSize:   pageSize,
	}
}

// ページ番号方式。URLはhandlerで組み立てる
type ProductPage struct {
	Count    int64
	Page     int
	NumPages int
	NextPage *int
	PrevPage *int
	Results  []model.Product
}

type ProductDetail struct {
	model.Product
	CategoryName string `json:"category_name"`
	CategorySlug string `json:"category_slug"`
	SellerName   string `json:"seller_name"`
	SellerSlug   string `json:"seller_slug"`
}

type SellerDetail struct {
	model.Seller
	Products []model.Product `json:"products"`
}

func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	list, err := u.categories.List(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	return list, nil
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, page int, q string) (ProductPage, error) {
	if page < 1 {
		return ProductPage{}, NewHTTPError(http.StatusNotFound, "invalid page")
	}

	items, total, err := u.products.List(ctx, repo.ProductListQuery{
		Page:  page,
		Limit: u.pageSize,
		Q:     q,
	})
	if err != nil {
		return ProductPage{}, dbError(err)
	}

	numPages := int((total + int64(u.pageSize) - 1) / int64(u.pageSize))
	if numPages == 0 {
		//空でも1ページ目は返す
		numPages = 1
	}
	if page > numPages {
		return ProductPage{}, NewHTTPError(http.StatusNotFound, "invalid page")
	}

	out := ProductPage{
		Count:    total,
		Page:     page,
		NumPages: numPages,
		Results:  items,
	}
	if page < numPages {
		next := page + 1
		out.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		out.PrevPage = &prev
	}
	return out, nil
}

// カテゴリが無くても空の一覧
func (u *CatalogUsecase) ListCategoryProducts(ctx context.Context, categorySlug string) ([]model.Product, error) {
	list, err := u.products.ListByCategorySlug(ctx, categorySlug)
	if err != nil {
		return nil, dbError(err)
	}
	return list, nil
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, categorySlug, productSlug string) (ProductDetail, error) {
	p, err := u.products.FindBySlugs(ctx, categorySlug, productSlug)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetail{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductDetail{}, dbError(err)
	}

	out := ProductDetail{Product: p}
	if p.Category != nil {
		out.CategoryName = p.Category.Name
		out.CategorySlug = p.Category.Slug
	}
	if p.Seller != nil {
		out.SellerName = p.Seller.Name
		out.SellerSlug = p.Seller.Slug
	}
	return out, nil
}

func (u *CatalogUsecase) ListSellers(ctx context.Context) ([]model.Seller, error) {
	list, err := u.sellers.List(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	return list, nil
}

func (u *CatalogUsecase) GetSeller(ctx context.Context, slug string) (SellerDetail, error) {
	s, err := u.sellers.FindBySlug(ctx, slug)
	if errors.Is(err, repo.ErrNotFound) {
		return SellerDetail{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return SellerDetail{}, dbError(err)
	}

	//出品商品は最大100件
	items, _, err := u.products.List(ctx, repo.ProductListQuery{Page: 1, Limit: 100, SellerID: &s.ID})
	if err != nil {
		return SellerDetail{}, dbError(err)
	}
	return SellerDetail{Seller: s, Products: items}, nil
}
