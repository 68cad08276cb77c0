package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// 一意制約違反、または参照されている行の削除
	ErrConflict = errors.New("conflict")
	// 作成時に参照先（住所・商品など）が無い
	ErrReferenceMissing = errors.New("referenced row missing")
)
