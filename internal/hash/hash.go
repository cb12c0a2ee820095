// Package hash wraps bcrypt password hashing.
package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const cost = 12

// Password hashes a plain-text password with bcrypt. Each call salts
// independently, so hashing the same password twice yields different output.
func Password(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify compares a plain-text password against a stored hash. A nil hash
// (Google accounts have none) never verifies.
func Verify(plain string, hashed *string) bool {
	if hashed == nil || *hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hashed), []byte(plain)) == nil
}
