package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthProvider is the credential origin for a user. A user keeps exactly one
// provider for its whole lifetime.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// GoogleIdentity holds provider-supplied identity metadata. Informational
// only; validity of a Google session is established per sign-in.
type GoogleIdentity struct {
	Subject     string
	Picture     string
	LastIDToken string
}

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// User represents a registered account.
//
// PasswordHash is set only when Provider is local; Google is set only when
// Provider is google. Constructors enforce the split.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash *string
	IsVerified   bool
	IsActive     bool
	Provider     AuthProvider
	Google       *GoogleIdentity

	FirstName       *string
	LastName        *string
	PhoneNumber     *string
	ProfileImageURL *string

	// Email verification slot.
	VerificationCode      *int
	VerificationExpiresAt *time.Time

	// Password reset slot.
	ResetCode      *int
	ResetExpiresAt *time.Time
	ResetVerified  bool

	// Login metadata, informational only.
	LastLoginIP     *string
	LastLoginDevice *string
	LastLoginAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLocalUser creates an unverified password-based account.
func NewLocalUser(username, email, passwordHash string) User {
	now := time.Now()
	return User{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(username),
		Email:        NormalizeEmail(email),
		PasswordHash: &passwordHash,
		IsVerified:   false,
		IsActive:     true,
		Provider:     ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewGoogleUser creates a pre-verified account backed by a Google identity.
func NewGoogleUser(username, email string, identity GoogleIdentity) User {
	now := time.Now()
	return User{
		ID:         uuid.New(),
		Username:   strings.TrimSpace(username),
		Email:      NormalizeEmail(email),
		IsVerified: true,
		IsActive:   true,
		Provider:   ProviderGoogle,
		Google:     &identity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsLocal reports whether the account uses password credentials.
func (u *User) IsLocal() bool {
	return u.Provider == ProviderLocal
}

// ClearVerification empties the verification slot. Codes are single-use.
func (u *User) ClearVerification() {
	u.VerificationCode = nil
	u.VerificationExpiresAt = nil
}

// ClearReset empties the whole reset slot including the verified flag.
func (u *User) ClearReset() {
	u.ResetCode = nil
	u.ResetExpiresAt = nil
	u.ResetVerified = false
}

// NormalizeEmail lowercases and trims an email address. Every store lookup
// and insert goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
