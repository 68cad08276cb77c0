package validator

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"storefront/internal/usecase"
)

var (
	// refresh tokenが不正
	ErrInvalidRefresh = errors.New("invalid refresh")
	// 不正なID
	ErrInvalidID = errors.New("invalid id")
)

const (
	msgRequired  = "This field is required."
	msgBadEmail  = "Enter a valid email address."
	msgShortPass = "This password is too short. It must contain at least 8 characters."
	msgUsername  = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

// handlerが使う入力チェック
type AuthValidator interface {
	ValidateRegister(username, email, password string) error
	ValidateLogin(login, password string) error
	ValidateRefresh(refreshToken string) error
	ValidateForceLogout(targetUserID int64) error
}

type authValidator struct{}

func NewAuthValidator() AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(username, email, password string) error {
	fields := map[string]string{}

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		fields["username"] = msgRequired
	} else if !IsUsername(username) {
		fields["username"] = msgUsername
	}

	if email == "" {
		fields["email"] = msgRequired
	} else if !IsEmail(email) {
		fields["email"] = msgBadEmail
	}

	if password == "" {
		fields["password"] = msgRequired
	} else if len(password) < 8 {
		fields["password"] = msgShortPass
	}

	return asError(fields)
}

// ログインの入力を検証（usernameかemail）
func (v *authValidator) ValidateLogin(login, password string) error {
	fields := map[string]string{}
	if strings.TrimSpace(login) == "" {
		fields["username"] = msgRequired
	}
	if password == "" {
		fields["password"] = msgRequired
	}
	return asError(fields)
}

func (v *authValidator) ValidateRefresh(refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrInvalidRefresh
	}
	return nil
}

func (v *authValidator) ValidateForceLogout(targetUserID int64) error {
	if targetUserID <= 0 {
		return ErrInvalidID
	}
	return nil
}

// 150文字以内の英数字と @.+-_
func IsUsername(s string) bool {
	return usernameRe.MatchString(s)
}

// 表示名つき（"A <a@b>"）は不可
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func asError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &usecase.ValidationError{Fields: fields}
}
