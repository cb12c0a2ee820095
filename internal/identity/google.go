// Package identity verifies external identity assertions.
package identity

import (
	"context"
	"fmt"

	oidc "github.com/coreos/go-oidc"

	"github.com/imagify/imagify-server/internal/model"
)

const googleIssuer = "https://accounts.google.com"

var _ model.IdentityVerifier = (*GoogleVerifier)(nil)

// GoogleVerifier checks Google ID tokens against the accounts.google.com
// issuer and the configured OAuth client ID.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier discovers Google's OIDC configuration and builds a
// verifier bound to the given audience.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover google oidc provider: %w", err)
	}

	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify validates signature, issuer, audience and expiry of a raw ID token
// and extracts the asserted profile. Every failure collapses into one
// generic error so verifier internals never leak to callers.
func (g *GoogleVerifier) Verify(ctx context.Context, rawToken string) (model.Identity, error) {
	idToken, err := g.verifier.Verify(ctx, rawToken)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to verify id token: %w", err)
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return model.Identity{}, fmt.Errorf("failed to decode id token claims: %w", err)
	}

	return model.Identity{
		Issuer:   idToken.Issuer,
		Subject:  idToken.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
		RawToken: rawToken,
	}, nil
}
