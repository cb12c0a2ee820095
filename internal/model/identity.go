package model

import "context"

// Identity is a verified external identity assertion.
type Identity struct {
	Issuer   string
	Subject  string
	Email    string
	Name     string
	Picture  string
	RawToken string
}

// IdentityVerifier validates an external ID token against the expected
// issuer and audience. It fails closed: any verification problem surfaces as
// a single generic error, never verifier internals.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (Identity, error)
}
