package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/imagify/imagify-server/internal/model"
)

// usernameProbeLimit bounds the suffix search so adversarial concurrent
// registrations cannot spin the loop forever.
const usernameProbeLimit = 100

// SignInWithGoogle verifies a Google ID token and signs the asserted user
// in, creating a pre-verified account on first contact. Accounts registered
// with a password are never merged with Google identities.
func (a *Auth) SignInWithGoogle(ctx context.Context, rawIDToken string) (model.User, string, string, error) {
	identity, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		a.logger.Info("Auth service: google token verification failed", "error", err.Error())
		return model.User{}, "", "", model.NewErrInvalidGoogleToken()
	}

	email := model.NormalizeEmail(identity.Email)
	if email == "" {
		return model.User{}, "", "", model.NewErrInvalidGoogleToken()
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, "", "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if err == nil {
		if user.Provider != model.ProviderGoogle {
			return model.User{}, "", "", model.NewErrProviderConflict()
		}
		if !user.IsActive {
			return model.User{}, "", "", model.NewErrAccountDisabled()
		}

		user.Google = &model.GoogleIdentity{
			Subject:     identity.Subject,
			Picture:     identity.Picture,
			LastIDToken: identity.RawToken,
		}
		if err := a.users.Update(ctx, user); err != nil {
			return model.User{}, "", "", fmt.Errorf("failed to update google identity: %w", err)
		}
	} else {
		user, err = a.createGoogleUser(ctx, email, identity)
		if err != nil {
			return model.User{}, "", "", err
		}
	}

	access, refresh, err := a.tokenService.Issue(ctx, user)
	if err != nil {
		return model.User{}, "", "", fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: google sign-in completed", "email", email)
	return user, access, refresh, nil
}

func (a *Auth) createGoogleUser(ctx context.Context, email string, identity model.Identity) (model.User, error) {
	base := strings.TrimSpace(identity.Name)
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}
	if base == "" {
		base = "user"
	}

	candidate := base
	for suffix := 1; suffix <= usernameProbeLimit; suffix++ {
		_, err := a.users.GetByUsername(ctx, candidate)
		if err == nil {
			candidate = fmt.Sprintf("%s_%d", base, suffix)
			continue
		}
		if !errors.Is(err, model.ErrNotFound) {
			return model.User{}, fmt.Errorf("failed to probe username: %w", err)
		}

		user := model.NewGoogleUser(candidate, email, model.GoogleIdentity{
			Subject:     identity.Subject,
			Picture:     identity.Picture,
			LastIDToken: identity.RawToken,
		})
		if identity.Picture != "" {
			user.ProfileImageURL = &identity.Picture
		}

		created, err := a.users.Create(ctx, user)
		if err != nil {
			if errors.Is(err, model.ErrDuplicateEmail) {
				// Concurrent first sign-in with the same Google account;
				// retrying usernames cannot resolve this.
				return model.User{}, model.NewErrEmailTaken()
			}
			if errors.Is(err, model.ErrDuplicate) {
				// Lost a race on the username index; try the next suffix.
				candidate = fmt.Sprintf("%s_%d", base, suffix)
				continue
			}
			return model.User{}, fmt.Errorf("failed to create google user: %w", err)
		}

		a.logger.Info("Auth service: created account from google identity",
			"email", email,
			"username", created.Username)
		return created, nil
	}

	return model.User{}, model.NewErrUsernameTaken()
}
