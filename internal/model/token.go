package model

import "github.com/google/uuid"

// AccessClaims is the decoded payload of an access token.
type AccessClaims struct {
	UserID uuid.UUID
	Email  string
}

// TokenManager generates and validates signed access tokens. Parse failures
// distinguish ErrTokenExpired from ErrTokenInvalid for logging; callers
// surface both as a generic unauthenticated error.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)
	ParseAccessToken(token string) (AccessClaims, error)
}
