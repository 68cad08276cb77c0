package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 画像の保存先（S3 or ローカル）
type ImageStore interface {
	//保存して公開URL（またはパス）を返す
	Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type PasswordVerifier interface {
	Verify(plain, hash string) bool
}

const (
	MaxProfileImageBytes = 5 << 20
	minPasswordLen       = 8
	dobLayout            = "2006-01-02"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

type ProfileUsecase struct {
	users    repo.UserRepository
	profiles repo.ProfileRepository
	tokens   repo.RefreshTokenRepository
	images   ImageStore
	hasher   PasswordHasher
	verifier PasswordVerifier
}

// DI
func NewProfileUsecase(
	users repo.UserRepository,
	profiles repo.ProfileRepository,
	tokens repo.RefreshTokenRepository,
	images ImageStore,
	hasher PasswordHasher,
	verifier PasswordVerifier,
) *ProfileUsecase {
	return &ProfileUsecase{
		users:    users,
		profiles: profiles,
		tokens:   tokens,
		images:   images,
		hasher:   hasher,
		verifier: verifier,
	}
}

type ProfileDetail struct {
	DOB   *string `json:"dob"`
	Image string  `json:"image"`
}

type ProfileOutput struct {
	ID         int64         `json:"id"`
	Username   string        `json:"username"`
	Email      string        `json:"email"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	DateJoined time.Time     `json:"date_joined"`
	LastLogin  *time.Time    `json:"last_login"`
	IsActive   bool          `json:"is_active"`
	IsStaff    bool          `json:"is_staff"`
	Profile    ProfileDetail `json:"profile"`
}

// nilは「変更しない」
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	//YYYY-MM-DD。空文字で削除
	DOB *string
}

type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

type UploadImageInput struct {
	Filename string
	Size     int64
	Body     io.Reader
}

func (u *ProfileUsecase) GetProfile(ctx context.Context, userID int64) (ProfileOutput, error) {
	if userID <= 0 {
		return ProfileOutput{}, ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return ProfileOutput{}, ErrNotFound
	}
	if err != nil {
		return ProfileOutput{}, internalError(err)
	}

	p, err := u.profiles.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return ProfileOutput{}, internalError(err)
	}
	if errors.Is(err, repo.ErrNotFound) {
		p = model.Profile{UserID: userID, Image: model.DefaultProfileImage}
	}

	return toProfileOutput(user, p), nil
}

func (u *ProfileUsecase) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (ProfileOutput, error) {
	if userID <= 0 {
		return ProfileOutput{}, ErrUnauthorized
	}

	fields := map[string]string{}
	var dob *time.Time
	if in.DOB != nil && strings.TrimSpace(*in.DOB) != "" {
		t, err := time.Parse(dobLayout, strings.TrimSpace(*in.DOB))
		if err != nil {
			fields["dob"] = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
		} else {
			dob = &t
		}
	}
	if in.FirstName != nil && len(*in.FirstName) > 150 {
		fields["first_name"] = "Ensure this field has no more than 150 characters."
	}
	if in.LastName != nil && len(*in.LastName) > 150 {
		fields["last_name"] = "Ensure this field has no more than 150 characters."
	}
	if err := newValidationError(fields); err != nil {
		return ProfileOutput{}, err
	}

	current, err := u.GetProfile(ctx, userID)
	if err != nil {
		return ProfileOutput{}, err
	}

	if in.FirstName != nil || in.LastName != nil {
		first, last := current.FirstName, current.LastName
		if in.FirstName != nil {
			first = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			last = strings.TrimSpace(*in.LastName)
		}
		if err := u.users.UpdateNames(ctx, userID, first, last); err != nil {
			return ProfileOutput{}, internalError(err)
		}
	}

	if in.DOB != nil {
		if err := u.profiles.UpdateDOB(ctx, userID, dob); err != nil {
			return ProfileOutput{}, internalError(err)
		}
	}

	return u.GetProfile(ctx, userID)
}

// token_versionが上がるので既存のアクセストークンは無効
func (u *ProfileUsecase) ChangePassword(ctx context.Context, userID int64, in ChangePasswordInput) error {
	if userID <= 0 {
		return ErrUnauthorized
	}

	fields := map[string]string{}
	if in.OldPassword == "" {
		fields["old_password"] = msgRequired
	}
	if in.NewPassword == "" {
		fields["new_password"] = msgRequired
	} else if len(in.NewPassword) < minPasswordLen {
		fields["new_password"] = "This password is too short. It must contain at least 8 characters."
	}
	if err := newValidationError(fields); err != nil {
		return err
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return internalError(err)
	}

	if !u.verifier.Verify(in.OldPassword, user.PasswordHash) {
		return &ValidationError{Fields: map[string]string{"old_password": "Wrong password."}}
	}

	hash, err := u.hasher.Hash(in.NewPassword)
	if err != nil {
		return internalError(err)
	}
	if err := u.users.UpdatePassword(ctx, userID, hash); err != nil {
		return internalError(err)
	}
	//ほかの端末のリフレッシュトークンも消す
	if err := u.tokens.DeleteAllByUserID(ctx, userID); err != nil {
		return internalError(err)
	}
	return nil
}

// jpeg/png/gif、5MBまで
func (u *ProfileUsecase) UploadImage(ctx context.Context, userID int64, in UploadImageInput) (ProfileOutput, error) {
	if userID <= 0 {
		return ProfileOutput{}, ErrUnauthorized
	}
	if in.Body == nil {
		return ProfileOutput{}, &ValidationError{Fields: map[string]string{"image": "No file was submitted."}}
	}
	if in.Size > MaxProfileImageBytes {
		return ProfileOutput{}, &ValidationError{Fields: map[string]string{"image": "File too large. Size should not exceed 5 MB."}}
	}

	//中身で判定する（拡張子は信用しない）
	head := make([]byte, 512)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return ProfileOutput{}, internalError(err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return ProfileOutput{}, &ValidationError{Fields: map[string]string{
			"image": "Upload a valid image. The file you uploaded was either not an image or a corrupted image.",
		}}
	}

	//サイズ不明のときも上限で切る
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), in.Body), MaxProfileImageBytes+1)
	key := fmt.Sprintf("profile_pics/%d-%s%s", userID, uuid.NewString(), ext)

	url, err := u.images.Put(ctx, key, contentType, body)
	if err != nil {
		return ProfileOutput{}, &HTTPError{Status: http.StatusBadGateway, Message: "image store unavailable", Err: err}
	}

	if err := u.profiles.UpdateImage(ctx, userID, url); err != nil {
		return ProfileOutput{}, internalError(err)
	}
	return u.GetProfile(ctx, userID)
}

func toProfileOutput(user *model.User, p model.Profile) ProfileOutput {
	out := ProfileOutput{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		DateJoined: user.CreatedAt,
		LastLogin:  user.LastLoginAt,
		IsActive:   user.IsActive,
		IsStaff:    user.IsStaff(),
		Profile:    ProfileDetail{Image: p.Image},
	}
	if p.DOB != nil {
		s := p.DOB.Format(dobLayout)
		out.Profile.DOB = &s
	}
	return out
}
