package auth

import (
	"context"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// ページ用のログイン。JWTは出さず、セッションはhandler側で作る
type SessionLoginUsecase struct {
	userRepo repository.UserRepository
	verifier PasswordVerifier
	clock    Clock
}

func NewSessionLoginUsecase(userRepo repository.UserRepository, verifier PasswordVerifier, clock Clock) *SessionLoginUsecase {
	return &SessionLoginUsecase{userRepo: userRepo, verifier: verifier, clock: clock}
}

func (u *SessionLoginUsecase) Execute(ctx context.Context, login, password string) (*model.User, error) {
	user, err := checkCredentials(ctx, u.userRepo, u.verifier, login, password)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
