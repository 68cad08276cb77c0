package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AddressDTO struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// 作成・更新で同じ形
type AddressRequest struct {
	Address string `json:"address" form:"address"`
	City    string `json:"city" form:"city"`
	State   string `json:"state" form:"state"`
	Country string `json:"country" form:"country"`
	Pincode string `json:"pincode" form:"pincode"`
	Phone   string `json:"phone" form:"phone"`
}

func (r AddressRequest) normalize() AddressRequest {
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.Country = strings.TrimSpace(r.Country)
	r.Pincode = strings.TrimSpace(r.Pincode)
	r.Phone = strings.TrimSpace(r.Phone)
	//国は省略可
	if r.Country == "" {
		r.Country = model.DefaultCountry
	}
	return r
}

func (r AddressRequest) validate() error {
	fields := map[string]string{}
	for name, v := range map[string]string{
		"address": r.Address,
		"city":    r.City,
		"state":   r.State,
		"pincode": r.Pincode,
		"phone":   r.Phone,
	} {
		if v == "" {
			fields[name] = msgRequired
		} else if len(v) > 255 {
			fields[name] = "Ensure this field has no more than 255 characters."
		}
	}
	return newValidationError(fields)
}

type AddressUsecase struct {
	addresses repo.AddressRepository
	now       func() time.Time
}

func NewAddressUsecase(addresses repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses, now: time.Now}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	list, err := u.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(&list[i]))
	}
	return out, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, req AddressRequest) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, ErrUnauthorized
	}

	req = req.normalize()
	if err := req.validate(); err != nil {
		return AddressDTO{}, err
	}

	now := u.now()
	created := model.Address{
		UserID:    userID,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		Pincode:   req.Pincode,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.addresses.Create(ctx, &created); err != nil {
		return AddressDTO{}, internalError(err)
	}

	return toAddressDTO(&created), nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, req AddressRequest) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, ErrUnauthorized
	}
	if addressID <= 0 {
		return AddressDTO{}, ErrValidation
	}

	req = req.normalize()
	if err := req.validate(); err != nil {
		return AddressDTO{}, err
	}

	a := model.Address{
		ID:        addressID,
		UserID:    userID,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		Pincode:   req.Pincode,
		Phone:     req.Phone,
		UpdatedAt: u.now(),
	}
	// 他人の住所は0件更新になりErrNotFound
	if err := u.addresses.UpdateForUser(ctx, a); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AddressDTO{}, ErrNotFound
		}
		return AddressDTO{}, internalError(err)
	}
	return toAddressDTO(&a), nil
}

// 注文が参照中なら409
func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if addressID <= 0 {
		return &ValidationError{Fields: map[string]string{"id": msgRequired}}
	}

	if err := u.addresses.DeleteForUser(ctx, userID, addressID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		if errors.Is(err, repo.ErrConflict) {
			return ErrConflict
		}
		return internalError(err)
	}

	return nil
}

func toAddressDTO(a *model.Address) AddressDTO {
	return AddressDTO{
		ID:      a.ID,
		UserID:  a.UserID,
		Address: a.Address,
		City:    a.City,
		State:   a.State,
		Country: a.Country,
		Pincode: a.Pincode,
		Phone:   a.Phone,
	}
}
