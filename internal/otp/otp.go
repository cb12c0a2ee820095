// Package otp issues and validates the 6-digit one-time codes used for
// email verification and password-reset gating.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/imagify/imagify-server/internal/model"
)

const (
	codeMin = 100000
	codeMax = 999999

	// TTL is the absolute lifetime of a freshly issued code.
	TTL = 15 * time.Minute
)

// Generate draws a uniform 6-digit code and returns it with its expiry.
func Generate() (int, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to draw random code: %w", err)
	}
	code := codeMin + int(n.Int64())
	return code, time.Now().Add(TTL), nil
}

// Validate checks a submitted code against a stored slot. It fails when the
// slot is empty, the code differs, or the expiry has passed. Clearing the
// slot after a successful validation is the caller's job.
func Validate(stored *int, expiresAt *time.Time, submitted int, now time.Time) error {
	if stored == nil || expiresAt == nil {
		return model.NewErrInvalidCode()
	}
	if *stored != submitted || now.After(*expiresAt) {
		return model.NewErrInvalidCode()
	}
	return nil
}
