package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type categoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) repo.CategoryRepository {
	return &categoryGormRepository{db: db}
}

func (r *categoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var list []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return []model.Category{}, err
	}
	return list, nil
}

func (r *categoryGormRepository) FindBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return model.Category{}, translateErr(err)
	}
	return c, nil
}

// slugはBeforeSaveで埋まる
func (r *categoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, translateErr(err)
	}
	return c, nil
}

type sellerGormRepository struct {
	db *gorm.DB
}

func NewSellerGormRepository(db *gorm.DB) repo.SellerRepository {
	return &sellerGormRepository{db: db}
}

func (r *sellerGormRepository) List(ctx context.Context) ([]model.Seller, error) {
	var list []model.Seller
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return []model.Seller{}, err
	}
	return list, nil
}

func (r *sellerGormRepository) FindBySlug(ctx context.Context, slug string) (model.Seller, error) {
	var s model.Seller
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&s).Error; err != nil {
		return model.Seller{}, translateErr(err)
	}
	return s, nil
}

func (r *sellerGormRepository) Create(ctx context.Context, s model.Seller) (model.Seller, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.Seller{}, translateErr(err)
	}
	return s, nil
}
