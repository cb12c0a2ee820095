package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imagify/imagify-server/internal/hash"
	"github.com/imagify/imagify-server/internal/logger"
	"github.com/imagify/imagify-server/internal/model"
	"github.com/imagify/imagify-server/internal/otp"
)

// Upload is an inbound file attached to a request.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	ProfileImage *Upload
}

// LoginInput carries the password-login payload plus caller metadata.
type LoginInput struct {
	Email    string
	Password string
	IP       string
	Device   string
}

// UpdateProfileInput carries optional profile changes; nil fields are left
// untouched.
type UpdateProfileInput struct {
	Username    *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// Auth sequences the account flows: register, verify, login, refresh and
// reset. It owns all User mutations; codes and tokens are delegated to the
// otp helpers and the TokenService.
type Auth struct {
	users        model.UserStore
	tokenService *TokenService
	verifier     model.IdentityVerifier
	storage      model.Storage
	notifier     model.Notifier
	logger       *logger.Logger
}

func NewAuth(
	users model.UserStore,
	refreshTokens model.RefreshTokenStore,
	tokenManager model.TokenManager,
	verifier model.IdentityVerifier,
	storage model.Storage,
	notifier model.Notifier,
	refreshTTL time.Duration,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		users:        users,
		tokenService: NewTokenService(tokenManager, refreshTokens, users, refreshTTL, logger),
		verifier:     verifier,
		storage:      storage,
		notifier:     notifier,
		logger:       logger,
	}
}

// Register creates an unverified local account and emails a verification
// code. Re-registering an existing unverified email regenerates the code
// instead of erroring, so a resend never duplicates an account.
func (a *Auth) Register(ctx context.Context, in RegisterInput) error {
	email := model.NormalizeEmail(in.Email)

	a.logger.Debug("Auth service: starting registration", "email", email)

	existing, err := a.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	if err == nil {
		if existing.IsVerified {
			a.logger.Info("Auth service: email already registered and verified", "email", email)
			return model.NewErrEmailTaken()
		}

		code, expiresAt, err := otp.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate verification code: %w", err)
		}
		existing.VerificationCode = &code
		existing.VerificationExpiresAt = &expiresAt

		if err := a.users.Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to refresh verification code: %w", err)
		}

		a.notifier.Enqueue(model.Email{Kind: model.EmailVerificationCode, To: existing.Email, Code: code})
		a.logger.Info("Auth service: regenerated verification code for unverified account", "email", email)
		return nil
	}

	passwordHash, err := hash.Password(in.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	code, expiresAt, err := otp.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	user := model.NewLocalUser(in.Username, email, passwordHash)
	user.VerificationCode = &code
	user.VerificationExpiresAt = &expiresAt

	if in.ProfileImage != nil {
		url, err := a.uploadProfileImage(ctx, in.ProfileImage)
		if err != nil {
			return err
		}
		user.ProfileImageURL = &url
	}

	if _, err := a.users.Create(ctx, user); err != nil {
		// The unique index caught a concurrent registration.
		if errors.Is(err, model.ErrDuplicateEmail) {
			return model.NewErrEmailTaken()
		}
		if errors.Is(err, model.ErrDuplicate) {
			return model.NewErrUsernameTaken()
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	a.notifier.Enqueue(model.Email{Kind: model.EmailVerificationCode, To: user.Email, Code: code})

	a.logger.Info("Auth service: registration completed", "email", email)
	return nil
}

// VerifyEmail consumes a verification code. The slot is cleared on success,
// so a code validates exactly once.
func (a *Auth) VerifyEmail(ctx context.Context, email string, code int) error {
	user, err := a.users.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrInvalidCode()
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	// A consumed code fails exactly like a wrong one: verification empties
	// the slot, so an already-verified account never validates again.
	if err := otp.Validate(user.VerificationCode, user.VerificationExpiresAt, code, time.Now()); err != nil {
		return err
	}

	user.IsVerified = true
	user.ClearVerification()

	if err := a.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	a.logger.Info("Auth service: email verified", "email", user.Email)
	return nil
}

// ResendCode regenerates the verification code for a pending account.
func (a *Auth) ResendCode(ctx context.Context, email string) error {
	user, err := a.users.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrNoPendingVerification()
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	if user.IsVerified {
		return model.NewErrNoPendingVerification()
	}

	code, expiresAt, err := otp.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	user.VerificationCode = &code
	user.VerificationExpiresAt = &expiresAt

	if err := a.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store new verification code: %w", err)
	}

	a.notifier.Enqueue(model.Email{Kind: model.EmailVerificationCode, To: user.Email, Code: code})
	return nil
}

// Login verifies password credentials and issues a token pair. Unknown
// users, wrong providers and wrong passwords all surface as the same
// invalid-credentials error; the precise reason goes to the log.
func (a *Auth) Login(ctx context.Context, in LoginInput) (model.User, string, string, error) {
	email := model.NormalizeEmail(in.Email)

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Info("Auth service: login for unknown email", "email", email)
			return model.User{}, "", "", model.NewErrInvalidCredentials()
		}
		return model.User{}, "", "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if !user.IsLocal() {
		a.logger.Info("Auth service: password login against non-local account", "email", email)
		return model.User{}, "", "", model.NewErrInvalidCredentials()
	}

	if !user.IsActive {
		return model.User{}, "", "", model.NewErrAccountDisabled()
	}

	if !hash.Verify(in.Password, user.PasswordHash) {
		a.logger.Info("Auth service: wrong password", "email", email)
		return model.User{}, "", "", model.NewErrInvalidCredentials()
	}

	if !user.IsVerified {
		return model.User{}, "", "", model.NewErrEmailNotVerified()
	}

	newDevice := user.LastLoginIP == nil || *user.LastLoginIP != in.IP ||
		user.LastLoginDevice == nil || *user.LastLoginDevice != in.Device

	now := time.Now()
	user.LastLoginIP = &in.IP
	user.LastLoginDevice = &in.Device
	user.LastLoginAt = &now

	if err := a.users.Update(ctx, user); err != nil {
		return model.User{}, "", "", fmt.Errorf("failed to record login metadata: %w", err)
	}

	access, refresh, err := a.tokenService.Issue(ctx, user)
	if err != nil {
		return model.User{}, "", "", fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.notifier.Enqueue(model.Email{Kind: model.EmailLoginAlert, To: user.Email, IP: in.IP, Device: in.Device})
	if newDevice {
		a.notifier.Enqueue(model.Email{Kind: model.EmailNewDevice, To: user.Email, IP: in.IP, Device: in.Device})
	}

	a.logger.Info("Auth service: login completed", "email", email)
	return user, access, refresh, nil
}

// Refresh exchanges a live refresh token for a new access token.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (model.User, string, error) {
	return a.tokenService.Refresh(ctx, refreshToken)
}

// ForgotPassword issues a reset code for a local account.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	user, err := a.users.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrUserNotFound()
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	if !user.IsLocal() {
		return model.NewErrGoogleAccount()
	}
	if !user.IsActive {
		return model.NewErrAccountDisabled()
	}

	code, expiresAt, err := otp.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}
	user.ResetCode = &code
	user.ResetExpiresAt = &expiresAt
	user.ResetVerified = false

	if err := a.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	a.notifier.Enqueue(model.Email{Kind: model.EmailResetCode, To: user.Email, Code: code})
	return nil
}

// VerifyResetCode consumes a reset code and unlocks SetNewPassword. The
// password itself is not changed yet.
func (a *Auth) VerifyResetCode(ctx context.Context, email string, code int) error {
	user, err := a.users.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrInvalidCode()
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	if !user.IsLocal() {
		return model.NewErrGoogleAccount()
	}
	if !user.IsActive {
		return model.NewErrAccountDisabled()
	}

	if err := otp.Validate(user.ResetCode, user.ResetExpiresAt, code, time.Now()); err != nil {
		return err
	}

	user.ResetVerified = true

	if err := a.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to mark reset verified: %w", err)
	}

	return nil
}

// SetNewPassword completes a password reset. It requires a verified reset
// code, clears the whole reset slot and revokes the refresh token so every
// session has to log in again.
func (a *Auth) SetNewPassword(ctx context.Context, email, password string) error {
	user, err := a.users.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewErrUserNotFound()
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	if !user.IsLocal() {
		return model.NewErrGoogleAccount()
	}
	if !user.IsActive {
		return model.NewErrAccountDisabled()
	}
	if !user.ResetVerified {
		return model.NewErrResetNotVerified()
	}

	passwordHash, err := hash.Password(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = &passwordHash
	user.ClearReset()

	if err := a.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := a.tokenService.RevokeByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	a.notifier.Enqueue(model.Email{Kind: model.EmailPasswordChanged, To: user.Email})

	a.logger.Info("Auth service: password reset completed", "email", user.Email)
	return nil
}

// ChangePassword updates the password of an authenticated local account.
func (a *Auth) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := a.getActiveUser(ctx, userID)
	if err != nil {
		return err
	}

	if !user.IsLocal() {
		return model.NewErrGoogleAccount()
	}

	if !hash.Verify(oldPassword, user.PasswordHash) {
		return model.NewErrWrongPassword()
	}

	passwordHash, err := hash.Password(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = &passwordHash

	if err := a.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	a.notifier.Enqueue(model.Email{Kind: model.EmailPasswordChanged, To: user.Email})
	return nil
}

// SignOut revokes the presented refresh token. Unknown tokens are ignored.
func (a *Auth) SignOut(ctx context.Context, refreshToken string) error {
	return a.tokenService.RevokeByToken(ctx, refreshToken)
}

// DeleteAccount removes the account and its session.
func (a *Auth) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := a.getActiveUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := a.tokenService.RevokeByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	if err := a.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	a.notifier.Enqueue(model.Email{Kind: model.EmailAccountDeleted, To: user.Email})

	a.logger.Info("Auth service: account deleted", "email", user.Email)
	return nil
}

// GetProfile returns the authenticated user's account.
func (a *Auth) GetProfile(ctx context.Context, userID uuid.UUID) (model.User, error) {
	return a.getActiveUser(ctx, userID)
}

// UpdateProfile applies partial profile changes.
func (a *Auth) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (model.User, error) {
	user, err := a.getActiveUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	if in.FirstName != nil {
		trimmed := strings.TrimSpace(*in.FirstName)
		user.FirstName = &trimmed
	}
	if in.LastName != nil {
		trimmed := strings.TrimSpace(*in.LastName)
		user.LastName = &trimmed
	}
	if in.PhoneNumber != nil {
		trimmed := strings.TrimSpace(*in.PhoneNumber)
		user.PhoneNumber = &trimmed
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		other, err := a.users.GetByUsername(ctx, username)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return model.User{}, fmt.Errorf("failed to check username: %w", err)
		}
		if err == nil && other.ID != user.ID {
			return model.User{}, model.NewErrUsernameTaken()
		}
		user.Username = username
	}

	if err := a.users.Update(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return model.User{}, model.NewErrUsernameTaken()
		}
		return model.User{}, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// UpdateProfilePicture uploads a new profile image and stores its URL.
func (a *Auth) UpdateProfilePicture(ctx context.Context, userID uuid.UUID, upload Upload) (model.User, error) {
	user, err := a.getActiveUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	url, err := a.uploadProfileImage(ctx, &upload)
	if err != nil {
		return model.User{}, err
	}
	user.ProfileImageURL = &url

	if err := a.users.Update(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("failed to update profile image: %w", err)
	}

	return user, nil
}

func (a *Auth) getActiveUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.NewErrUserNotFound()
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	if !user.IsActive {
		return model.User{}, model.NewErrAccountDisabled()
	}
	return user, nil
}

func (a *Auth) uploadProfileImage(ctx context.Context, upload *Upload) (string, error) {
	safeName := strings.ReplaceAll(upload.Name, " ", "_")
	key := fmt.Sprintf("profile_pics/%s_%s", uuid.NewString(), safeName)

	url, err := a.storage.Upload(ctx, key, upload.Reader, upload.Size, upload.ContentType)
	if err != nil {
		a.logger.Error("Auth service: profile image upload failed", "error", err.Error())
		return "", model.NewErrUpstream("failed to upload profile image")
	}
	return url, nil
}
