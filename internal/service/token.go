package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imagify/imagify-server/internal/logger"
	"github.com/imagify/imagify-server/internal/model"
	"github.com/imagify/imagify-server/internal/token"
)

// TokenService provides high-level operations for issuing, refreshing,
// and revoking token pairs. It composes the TokenManager and RefreshTokenStore.
type TokenService struct {
	manager    model.TokenManager
	store      model.RefreshTokenStore
	users      model.UserStore
	refreshTTL time.Duration
	logger     *logger.Logger
}

func NewTokenService(
	manager model.TokenManager,
	store model.RefreshTokenStore,
	users model.UserStore,
	refreshTTL time.Duration,
	logger *logger.Logger,
) *TokenService {
	return &TokenService{
		manager:    manager,
		store:      store,
		users:      users,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// Issue creates an access token and rotates the user's refresh token in
// place. The old refresh value becomes invalid the moment the row is written.
func (s *TokenService) Issue(ctx context.Context, user model.User) (accessToken string, refreshToken string, err error) {
	access, err := s.manager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}

	refresh := token.NewRefreshToken()
	expiresAt := time.Now().Add(s.refreshTTL)

	if err := s.store.Upsert(ctx, user.ID, refresh, expiresAt); err != nil {
		return "", "", fmt.Errorf("persist refresh: %w", err)
	}

	return access, refresh, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// value itself is kept; rotation happens only on login.
func (s *TokenService) Refresh(ctx context.Context, presentedRefresh string) (model.User, string, error) {
	rt, err := s.store.GetByToken(ctx, presentedRefresh)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, "", model.NewErrInvalidRefreshToken()
		}
		return model.User{}, "", fmt.Errorf("failed to get refresh token: %w", err)
	}

	if rt.Expired(time.Now()) {
		return model.User{}, "", model.NewErrExpiredRefreshToken()
	}

	user, err := s.users.GetByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, "", model.NewErrUserNotFound()
		}
		return model.User{}, "", fmt.Errorf("failed to get refresh token owner: %w", err)
	}

	if !user.IsActive {
		return model.User{}, "", model.NewErrAccountDisabled()
	}

	access, err := s.manager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return model.User{}, "", fmt.Errorf("issue new access: %w", err)
	}

	return user, access, nil
}

// RevokeByToken deletes a refresh token. Deleting an unknown token is not an
// error; sign-out is idempotent.
func (s *TokenService) RevokeByToken(ctx context.Context, presentedRefresh string) error {
	return s.store.DeleteByToken(ctx, presentedRefresh)
}

// RevokeByUser deletes the user's refresh token, forcing a fresh login.
func (s *TokenService) RevokeByUser(ctx context.Context, userID uuid.UUID) error {
	return s.store.DeleteByUser(ctx, userID)
}

// GetUserID resolves an access token to its owner. Expired and malformed
// tokens are logged distinctly but surface the same way to callers.
func (s *TokenService) GetUserID(ctx context.Context, tokenString string) (uuid.UUID, error) {
	claims, err := s.manager.ParseAccessToken(tokenString)
	if err != nil {
		if errors.Is(err, model.ErrTokenExpired) {
			s.logger.Debug("Token service: access token expired")
		} else {
			s.logger.Debug("Token service: access token invalid")
		}
		return uuid.Nil, model.NewErrUnauthenticated()
	}
	return claims.UserID, nil
}
