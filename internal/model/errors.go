package model

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by stores and token parsing. Services translate
// them into *Error values before they reach the API boundary.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("unique constraint violation")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	// Column-specific duplicates; both match ErrDuplicate with errors.Is.
	ErrDuplicateEmail    = fmt.Errorf("%w: email", ErrDuplicate)
	ErrDuplicateUsername = fmt.Errorf("%w: username", ErrDuplicate)
)

// ErrorKind classifies user-visible failures.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindInvalidCredential ErrorKind = "invalid_credential"
	KindForbidden         ErrorKind = "forbidden"
	KindUpstream          ErrorKind = "upstream_failure"
	KindInternal          ErrorKind = "internal"
)

// Error is a typed operation failure with a stable machine-readable code.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// AsError extracts a typed *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

func NewErrUserNotFound() *Error {
	return &Error{Kind: KindNotFound, Code: "user_not_found", Message: "user not found"}
}

func NewErrEmailTaken() *Error {
	return &Error{Kind: KindConflict, Code: "email_taken", Message: "email already registered and verified"}
}

func NewErrUsernameTaken() *Error {
	return &Error{Kind: KindConflict, Code: "username_taken", Message: "username already taken"}
}

func NewErrProviderConflict() *Error {
	return &Error{Kind: KindConflict, Code: "provider_conflict", Message: "this email is registered with password, please use standard login"}
}

func NewErrGoogleAccount() *Error {
	return &Error{Kind: KindConflict, Code: "google_account", Message: "this account uses Google sign-in and does not have a password"}
}

func NewErrInvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredential, Code: "invalid_credentials", Message: "invalid email or password"}
}

func NewErrInvalidCode() *Error {
	return &Error{Kind: KindInvalidCredential, Code: "invalid_code", Message: "invalid or expired code"}
}

func NewErrInvalidGoogleToken() *Error {
	return &Error{Kind: KindInvalidCredential, Code: "invalid_google_token", Message: "invalid google token"}
}

func NewErrInvalidRefreshToken() *Error {
	return &Error{Kind: KindInvalidCredential, Code: "invalid_refresh_token", Message: "invalid refresh token"}
}

func NewErrExpiredRefreshToken() *Error {
	return &Error{Kind: KindInvalidCredential, Code: "expired_refresh_token", Message: "expired refresh token"}
}

func NewErrUnauthenticated() *Error {
	return &Error{Kind: KindInvalidCredential, Code: "unauthenticated", Message: "invalid or expired access token"}
}

func NewErrAccountDisabled() *Error {
	return &Error{Kind: KindForbidden, Code: "account_disabled", Message: "account is disabled"}
}

func NewErrEmailNotVerified() *Error {
	return &Error{Kind: KindForbidden, Code: "email_not_verified", Message: "email not verified"}
}

func NewErrNoPendingVerification() *Error {
	return &Error{Kind: KindInvalidCredential, Code: "no_pending_verification", Message: "no pending verification found"}
}

func NewErrResetNotVerified() *Error {
	return &Error{Kind: KindForbidden, Code: "reset_not_verified", Message: "code verification required before setting a new password"}
}

func NewErrWrongPassword() *Error {
	return &Error{Kind: KindInvalidCredential, Code: "wrong_password", Message: "current password is incorrect"}
}

func NewErrUpstream(message string) *Error {
	return &Error{Kind: KindUpstream, Code: "upstream_failure", Message: message}
}

func NewErrInternal() *Error {
	return &Error{Kind: KindInternal, Code: "internal_error", Message: "internal server error"}
}
