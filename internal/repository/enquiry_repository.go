package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type EnquiryRepository interface {
	Create(ctx context.Context, e model.Enquiry) (model.Enquiry, error)
}
