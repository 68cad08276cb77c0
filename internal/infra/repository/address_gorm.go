package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 住所の書き換え対象カラム
var addressColumns = []string{"address", "city", "state", "country", "pincode", "phone", "updated_at"}

type addressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) repo.AddressRepository {
	return &addressGormRepository{db: db}
}

func ownedBy(userID int64) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	}
}

func (r *addressGormRepository) Create(ctx context.Context, address *model.Address) error {
	return translateInsertErr(r.db.WithContext(ctx).Create(address).Error)
}

func (r *addressGormRepository) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	list := make([]model.Address, 0)
	err := r.db.WithContext(ctx).Scopes(ownedBy(userID)).Order("id").Find(&list).Error
	return list, err
}

func (r *addressGormRepository) FindForUser(ctx context.Context, userID, addressID int64) (model.Address, error) {
	var a model.Address
	err := r.db.WithContext(ctx).Scopes(ownedBy(userID)).Where("id = ?", addressID).Take(&a).Error
	if err != nil {
		return model.Address{}, translateErr(err)
	}
	return a, nil
}

func (r *addressGormRepository) UpdateForUser(ctx context.Context, address model.Address) error {
	res := r.db.WithContext(ctx).
		Model(&model.Address{}).
		Scopes(ownedBy(address.UserID)).
		Where("id = ?", address.ID).
		Select(addressColumns).
		Updates(&address)
	return affectedOne(res)
}

func (r *addressGormRepository) DeleteForUser(ctx context.Context, userID, addressID int64) error {
	res := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where("id = ?", addressID).
		Delete(&model.Address{})
	return affectedOne(res)
}

// 0件ならErrNotFound、DBエラーはrepoのエラーに寄せる
func affectedOne(res *gorm.DB) error {
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
