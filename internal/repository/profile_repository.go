package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID int64) (model.Profile, error)
	UpdateDOB(ctx context.Context, userID int64, dob *time.Time) error
	UpdateImage(ctx context.Context, userID int64, image string) error
}
