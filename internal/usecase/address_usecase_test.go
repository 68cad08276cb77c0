package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/infra/db/dbtest"
	repo "storefront/internal/repository"
	"storefront/internal/repository/repomock"
	"storefront/internal/usecase"
)

func validAddress() usecase.AddressRequest {
	return usecase.AddressRequest{
		Address: " 4 Park Street ",
		City:    "Kolkata",
		State:   "West Bengal",
		Pincode: "700016",
		Phone:   "9000000000",
	}
}

func TestAddressUsecase_CreateDefaultsCountry(t *testing.T) {
	e := newEnv(t)
	u := dbtest.CreateUser(t, e.db, "alice")

	got, err := e.address.Create(context.Background(), u.ID, validAddress())
	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.Equal(t, u.ID, got.UserID)
	assert.Equal(t, "India", got.Country)
	assert.Equal(t, "4 Park Street", got.Address)

	list, err := e.address.List(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddressUsecase_CreateValidation(t *testing.T) {
	e := newEnv(t)

	req := validAddress()
	req.City = "  "
	req.Phone = ""
	_, err := e.address.Create(context.Background(), 1, req)
	requireFieldError(t, err, "city")
	requireFieldError(t, err, "phone")
	assert.ErrorIs(t, err, usecase.ErrValidation)
}

func TestAddressUsecase_OtherUsersAddressIsNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, e.db, "alice")
	bob := dbtest.CreateUser(t, e.db, "bob")

	a, err := e.address.Create(ctx, alice.ID, validAddress())
	require.NoError(t, err)

	_, err = e.address.Update(ctx, bob.ID, a.ID, validAddress())
	assert.ErrorIs(t, err, usecase.ErrNotFound)

	assert.ErrorIs(t, e.address.Delete(ctx, bob.ID, a.ID), usecase.ErrNotFound)

	list, err := e.address.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	//本人なら更新・削除できる
	req := validAddress()
	req.City = "Howrah"
	updated, err := e.address.Update(ctx, alice.ID, a.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Howrah", updated.City)
	assert.NoError(t, e.address.Delete(ctx, alice.ID, a.ID))
}

func TestAddressUsecase_DeleteReferencedIsConflict(t *testing.T) {
	addresses := new(repomock.AddressRepo)
	addresses.On("DeleteForUser", mock.Anything, int64(1), int64(5)).Return(repo.ErrConflict)

	uc := usecase.NewAddressUsecase(addresses)
	assert.ErrorIs(t, uc.Delete(context.Background(), 1, 5), usecase.ErrConflict)
}

func TestAddressUsecase_DeleteMissingID(t *testing.T) {
	uc := usecase.NewAddressUsecase(new(repomock.AddressRepo))

	err := uc.Delete(context.Background(), 1, 0)
	requireFieldError(t, err, "id")
}
