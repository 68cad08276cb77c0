package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type enquiryGormRepository struct {
	db *gorm.DB
}

func NewEnquiryGormRepository(db *gorm.DB) repo.EnquiryRepository {
	return &enquiryGormRepository{db: db}
}

func (r *enquiryGormRepository) Create(ctx context.Context, e model.Enquiry) (model.Enquiry, error) {
	if err := r.db.WithContext(ctx).Omit("User").Create(&e).Error; err != nil {
		return model.Enquiry{}, translateErr(err)
	}
	return e, nil
}
