package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type profileGormRepository struct {
	db *gorm.DB
}

func NewProfileGormRepository(db *gorm.DB) repo.ProfileRepository {
	return &profileGormRepository{db: db}
}

func (r *profileGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return model.Profile{}, translateErr(err)
	}
	return p, nil
}

func (r *profileGormRepository) UpdateDOB(ctx context.Context, userID int64, dob *time.Time) error {
	return r.updateColumn(ctx, userID, "dob", dob)
}

func (r *profileGormRepository) UpdateImage(ctx context.Context, userID int64, image string) error {
	return r.updateColumn(ctx, userID, "image", image)
}

func (r *profileGormRepository) updateColumn(ctx context.Context, userID int64, column string, value interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("user_id = ?", userID).
		Update(column, value)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
