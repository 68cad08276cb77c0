package repository

import (
	"errors"

	"gorm.io/gorm"

	repo "storefront/internal/repository"
)

// gormのエラーをrepositoryのエラーに寄せる（TranslateError: true 前提）
// 削除時の外部キー違反は「参照されている」なのでErrConflict
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return repo.ErrConflict
	}
	return err
}

// 作成時の外部キー違反は参照先が消えている
func translateInsertErr(err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return repo.ErrReferenceMissing
	}
	return translateErr(err)
}
