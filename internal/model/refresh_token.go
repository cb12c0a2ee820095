package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore defines persistence operations for refresh tokens.
// Upsert must be atomic on user_id so concurrent logins cannot create a
// second row for the same user.
type RefreshTokenStore interface {
	GetByToken(ctx context.Context, token string) (RefreshToken, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (RefreshToken, error)
	Upsert(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// RefreshToken is the single live session credential of a user. The value is
// opaque; validity is solely a store lookup, so deletion revokes immediately.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its absolute expiry.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
