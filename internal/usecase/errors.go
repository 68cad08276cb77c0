package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//403　権限
	ErrForbidden = errors.New("forbidden")
	//404
	ErrNotFound = errors.New("not found")
	//409 競合
	ErrConflict = errors.New("conflict")
	//500
	ErrInternal = errors.New("internal error")
)

// ステータスとメッセージをhandlerまで運ぶ
type HTTPError struct {
	Status  int
	Message string
	//レスポンスに足す値（order_idなど）
	Data map[string]interface{}
	//ログ用。クライアントには返さない
	Err error
}

// ログ用に原因も付ける。レスポンスにはMessageだけを使う
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// DB起因の500。causeはUnwrapで取れる
func dbError(cause error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: "db error", Err: cause}
}

// errors.Is(err, ErrInternal)のまま原因を残す
func internalError(cause error) error {
	if cause == nil {
		return ErrInternal
	}
	return fmt.Errorf("%w: %w", ErrInternal, cause)
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 項目ごとの入力エラー。errors.Is(err, ErrValidation) で判定できる
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation error: " + strings.Join(keys, ",")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// 空ならnil
func newValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

const msgRequired = "This field is required."
