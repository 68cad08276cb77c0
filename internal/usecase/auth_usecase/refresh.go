package auth

import (
	"context"
	"errors"
	"time"

	"storefront/internal/repository"
)

type RefreshInput struct {
	PlainRefreshToken string
	UserAgent         string
}

type RefreshOutput struct {
	Token JwtAccessToken
	//新しいrefresh（Cookieを差し替える）
	PlainRefreshToken string
}

// refreshトークンのローテーション
type RefreshUsecase struct {
	userRepo repository.UserRepository
	rtRepo   repository.RefreshTokenRepository
	tokens   *refreshTokenIssuer
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewRefreshUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo: userRepo,
		rtRepo:   rtRepo,
		tokens:   &refreshTokenIssuer{rtRepo: rtRepo, idGen: idGen, ttl: refreshTTL},
		issuer:   issuer,
		clock:    clock,
	}
}

// 使用済みトークンが来たらそのユーザーの全トークンを消す
func (u *RefreshUsecase) Execute(ctx context.Context, in RefreshInput) (RefreshOutput, error) {
	var out RefreshOutput

	if in.PlainRefreshToken == "" {
		return out, ErrInvalidRefresh
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, HashRefreshToken(in.PlainRefreshToken))
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return out, ErrInvalidRefresh
	}
	if err != nil {
		return out, err
	}

	now := u.clock.Now()

	if rt.RevokedAt != nil {
		return out, ErrInvalidRefresh
	}
	//再利用検知
	if rt.UsedAt != nil {
		if err := u.rtRepo.DeleteAllByUserID(ctx, rt.UserID); err != nil {
			return out, err
		}
		return out, ErrSecurityIncident
	}
	if !rt.ExpiresAt.After(now) {
		return out, ErrInvalidRefresh
	}

	//同時に2回来たら片方だけ通る
	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			if delErr := u.rtRepo.DeleteAllByUserID(ctx, rt.UserID); delErr != nil {
				return out, delErr
			}
			return out, ErrSecurityIncident
		}
		return out, err
	}

	user, err := u.userRepo.FindByID(ctx, rt.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return out, ErrInvalidRefresh
	}
	if err != nil {
		return out, err
	}
	if !user.IsActive {
		return out, ErrUserInactive
	}

	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return out, err
	}

	plain, err := u.tokens.issue(ctx, user.ID, in.UserAgent, now)
	if err != nil {
		return out, err
	}

	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}
	out.PlainRefreshToken = plain
	return out, nil
}
