package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// RefreshTokenの有効期限
const RefreshTokenTTL = 30 * 24 * time.Hour

// handlerからusecaseに渡す入力。Loginはユーザー名かメール
type LoginInput struct {
	Login     string
	Password  string
	UserAgent string
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  model.User     `json:"user"`
	Token JwtAccessToken `json:"token"`
}

// handlerがCookieに詰めるために必要な値
type LoginSideEffect struct {
	PlainRefreshToken string
}

type LoginUsecase struct {
	userRepo repository.UserRepository
	tokens   *refreshTokenIssuer
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo: userRepo,
		tokens:   &refreshTokenIssuer{rtRepo: rtRepo, idGen: idGen, ttl: refreshTTL},
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, LoginSideEffect, error) {
	var out LoginOutput
	var side LoginSideEffect

	user, err := checkCredentials(ctx, u.userRepo, u.verifier, in.Login, in.Password)
	if err != nil {
		return out, side, err
	}

	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return out, side, err
	}

	plainRefresh, err := u.tokens.issue(ctx, user.ID, in.UserAgent, now)
	if err != nil {
		return out, side, err
	}

	//最終ログイン時刻更新
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, side, err
	}

	out.User = *user
	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}
	side.PlainRefreshToken = plainRefresh
	return out, side, nil
}

// ユーザー名かメールで探してパスワードを照合する
func checkCredentials(ctx context.Context, userRepo repository.UserRepository, verifier PasswordVerifier, login, password string) (*model.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	//@があればメール、無ければユーザー名
	var user *model.User
	var err error
	if strings.Contains(login, "@") {
		user, err = userRepo.FindByEmail(ctx, login)
		if errors.Is(err, repository.ErrUserNotFound) {
			user, err = userRepo.FindByUsername(ctx, login)
		}
	} else {
		user, err = userRepo.FindByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	//パスワード照合
	if !verifier.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

// refreshトークンを作って保存する（ログインとローテーションで共通）
type refreshTokenIssuer struct {
	rtRepo repository.RefreshTokenRepository
	idGen  IDGenerator
	ttl    time.Duration
}

func (r *refreshTokenIssuer) issue(ctx context.Context, userID int64, userAgent string, now time.Time) (string, error) {
	plain, err := GenerateSecureToken(32)
	if err != nil {
		return "", err
	}

	ttl := r.ttl
	if ttl <= 0 {
		ttl = RefreshTokenTTL
	}

	//期限切れはログインのたびに掃除
	if _, err := r.rtRepo.DeleteExpiredByUserID(ctx, userID, now); err != nil {
		return "", err
	}

	if err := r.rtRepo.Create(ctx, &model.RefreshToken{
		ID:        r.idGen.NewID(),
		UserID:    userID,
		TokenHash: HashRefreshToken(plain),
		UserAgent: userAgent,
		ExpiresAt: now.Add(ttl),
	}); err != nil {
		return "", err
	}
	return plain, nil
}
