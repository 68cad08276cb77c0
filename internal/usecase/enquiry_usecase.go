package usecase

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type EnquiryUsecase struct {
	enquiries repo.EnquiryRepository
	now       func() time.Time
}

func NewEnquiryUsecase(enquiries repo.EnquiryRepository) *EnquiryUsecase {
	return &EnquiryUsecase{enquiries: enquiries, now: time.Now}
}

type EnquiryInput struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// userIDはログインしていなければnil
func (u *EnquiryUsecase) Submit(ctx context.Context, userID *int64, in EnquiryInput) (model.Enquiry, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	fields := map[string]string{}
	if in.Subject == "" {
		fields["subject"] = msgRequired
	} else if len(in.Subject) > 255 {
		fields["subject"] = "Ensure this field has no more than 255 characters."
	}
	if in.Message == "" {
		fields["message"] = msgRequired
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			fields["email"] = "Enter a valid email address."
		}
	}
	if len(in.Name) > 255 {
		fields["name"] = "Ensure this field has no more than 255 characters."
	}
	if err := newValidationError(fields); err != nil {
		return model.Enquiry{}, err
	}

	created, err := u.enquiries.Create(ctx, model.Enquiry{
		UserID:  userID,
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
		Date:    u.now(),
	})
	if err != nil {
		return model.Enquiry{}, internalError(err)
	}
	return created, nil
}
