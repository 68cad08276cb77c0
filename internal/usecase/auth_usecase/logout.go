package auth

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

type LogoutUsecase struct {
	rtRepo repository.RefreshTokenRepository
}

func NewLogoutUsecase(rtRepo repository.RefreshTokenRepository) *LogoutUsecase {
	return &LogoutUsecase{rtRepo: rtRepo}
}

// 自分のrefreshだけ消す。無ければ何もしない
func (u *LogoutUsecase) Execute(ctx context.Context, userID int64, plainRefresh string) error {
	if plainRefresh == "" {
		return nil
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, HashRefreshToken(plainRefresh))
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rt.UserID != userID {
		return nil
	}

	return u.rtRepo.DeleteByID(ctx, rt.ID)
}

type ForceLogoutOutput struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

// 管理者による強制ログアウト
type ForceLogoutUsecase struct {
	userRepo  repository.UserRepository
	rtRepo    repository.RefreshTokenRepository
	auditRepo repository.AuditLogRepository
	clock     Clock
}

func NewForceLogoutUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	auditRepo repository.AuditLogRepository,
	clock Clock,
) *ForceLogoutUsecase {
	return &ForceLogoutUsecase{
		userRepo:  userRepo,
		rtRepo:    rtRepo,
		auditRepo: auditRepo,
		clock:     clock,
	}
}

// token_versionを上げて発行済みJWTを無効にする
func (u *ForceLogoutUsecase) Execute(ctx context.Context, actorUserID, targetUserID int64) (ForceLogoutOutput, error) {
	var out ForceLogoutOutput

	before, err := u.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return out, err
	}

	if err := u.userRepo.IncrementTokenVersion(ctx, targetUserID); err != nil {
		return out, err
	}
	if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
		return out, err
	}

	newTV := before.TokenVersion + 1

	b, _ := json.Marshal(map[string]int{"token_version": before.TokenVersion})
	a, _ := json.Marshal(map[string]int{"token_version": newTV})
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionForceLogout,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		Before:       datatypes.JSON(b),
		After:        datatypes.JSON(a),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return out, err
	}

	out = ForceLogoutOutput{UserID: targetUserID, NewTokenVersion: newTV}
	return out, nil
}
