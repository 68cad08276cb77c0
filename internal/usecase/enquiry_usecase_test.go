package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/model"
	"storefront/internal/repository/repomock"
	"storefront/internal/usecase"
)

func TestEnquiryUsecase_Submit(t *testing.T) {
	enquiries := new(repomock.EnquiryRepo)
	uc := usecase.NewEnquiryUsecase(enquiries)

	uid := int64(4)
	enquiries.On("Create", mock.Anything, mock.MatchedBy(func(e model.Enquiry) bool {
		return e.UserID != nil && *e.UserID == uid && e.Subject == "Late delivery" && !e.Date.IsZero()
	})).Return(model.Enquiry{ID: 1, Subject: "Late delivery"}, nil)

	got, err := uc.Submit(context.Background(), &uid, usecase.EnquiryInput{
		Name:    "Alice",
		Email:   "alice@example.com",
		Subject: " Late delivery ",
		Message: "Order 12 has not arrived.",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	enquiries.AssertExpectations(t)
}

func TestEnquiryUsecase_Submit_Validation(t *testing.T) {
	enquiries := new(repomock.EnquiryRepo)
	uc := usecase.NewEnquiryUsecase(enquiries)

	_, err := uc.Submit(context.Background(), nil, usecase.EnquiryInput{Email: "not-an-email"})
	requireFieldError(t, err, "subject")
	requireFieldError(t, err, "message")
	requireFieldError(t, err, "email")
	enquiries.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
