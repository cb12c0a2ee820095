package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/imagify/imagify-server/internal/logger"
	"github.com/imagify/imagify-server/internal/model"
	"github.com/imagify/imagify-server/internal/service"
)

// maxMultipartMemory bounds in-memory parsing of multipart uploads; larger
// parts spill to disk.
const maxMultipartMemory = 10 << 20

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// AuthService defines the account flows exposed without authentication.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) error
	VerifyEmail(ctx context.Context, email string, code int) error
	ResendCode(ctx context.Context, email string) error
	Login(ctx context.Context, in service.LoginInput) (model.User, string, string, error)
	SignInWithGoogle(ctx context.Context, rawIDToken string) (model.User, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (model.User, string, error)
	SignOut(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email string, code int) error
	SetNewPassword(ctx context.Context, email, password string) error
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type codeRequest struct {
	Email string `json:"email"`
	Code  int    `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleSignInRequest struct {
	IDToken string `json:"id_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type setNewPasswordRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register creates an unverified account. The body is either JSON or a
// multipart form with an optional profile_image part.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	in, cleanup, err := h.parseRegisterRequest(r)
	defer cleanup()
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	h.logger.Debug("Auth handler: processing registration request", "email", in.Email)

	if err := h.authService.Register(r.Context(), in); err != nil {
		h.logger.Error("Auth handler: registration failed",
			"email", in.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: registration completed", "email", in.Email)

	writeJSON(w, http.StatusCreated, messageResponse{Message: "verification code sent"})
}

// VerifyEmail consumes a verification code and activates the account.
func (h *Auth) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := validateEmail(req.Email); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		h.logger.Error("Auth handler: email verification failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: email verified", "email", req.Email)

	writeJSON(w, http.StatusOK, messageResponse{Message: "email verified"})
}

// ResendCode regenerates and resends the verification code.
func (h *Auth) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := validateEmail(req.Email); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.authService.ResendCode(r.Context(), req.Email); err != nil {
		h.logger.Error("Auth handler: resend code failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "verification code sent"})
}

// Login verifies password credentials and returns a token pair.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := validateEmail(req.Email); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Password == "" {
		badRequest(w, "password is required")
		return
	}

	h.logger.Debug("Auth handler: processing login request", "email", req.Email)

	user, access, refresh, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       clientIP(r),
		Device:   r.UserAgent(),
	})
	if err != nil {
		h.logger.Error("Auth handler: login failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: login completed", "email", req.Email)

	writeJSON(w, http.StatusOK, tokenResponse{
		UserID:       user.ID.String(),
		AccessToken:  access,
		TokenType:    "bearer",
		RefreshToken: refresh,
	})
}

// GoogleSignIn verifies a Google ID token and signs the user in, creating
// the account on first use.
func (h *Auth) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.IDToken == "" {
		badRequest(w, "id_token is required")
		return
	}

	user, access, refresh, err := h.authService.SignInWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		h.logger.Error("Auth handler: google sign-in failed", "error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: google sign-in completed", "email", user.Email)

	writeJSON(w, http.StatusOK, tokenResponse{
		UserID:       user.ID.String(),
		AccessToken:  access,
		TokenType:    "bearer",
		RefreshToken: refresh,
	})
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token itself stays valid until its expiry.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.RefreshToken == "" {
		badRequest(w, "refresh_token is required")
		return
	}

	user, access, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("Auth handler: token refresh failed", "error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: token refresh completed", "user_id", user.ID)

	writeJSON(w, http.StatusOK, tokenResponse{
		UserID:       user.ID.String(),
		AccessToken:  access,
		TokenType:    "bearer",
		RefreshToken: req.RefreshToken,
	})
}

// SignOut revokes a refresh token. Revoking an unknown token succeeds.
func (h *Auth) SignOut(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.RefreshToken == "" {
		badRequest(w, "refresh_token is required")
		return
	}

	if err := h.authService.SignOut(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("Auth handler: sign-out failed", "error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "signed out"})
}

// ForgotPassword sends a password reset code.
func (h *Auth) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := validateEmail(req.Email); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		h.logger.Error("Auth handler: forgot password failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "reset code sent"})
}

// VerifyResetCode consumes a reset code and unlocks setting a new password.
func (h *Auth) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := validateEmail(req.Email); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.authService.VerifyResetCode(r.Context(), req.Email, req.Code); err != nil {
		h.logger.Error("Auth handler: reset code verification failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "reset code verified"})
}

// SetNewPassword completes a password reset started by ForgotPassword.
func (h *Auth) SetNewPassword(w http.ResponseWriter, r *http.Request) {
	var req setNewPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := validateEmail(req.Email); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := validatePassword(req.NewPassword, req.ConfirmPassword); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.authService.SetNewPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		h.logger.Error("Auth handler: set new password failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: password reset completed", "email", req.Email)

	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

func (h *Auth) parseRegisterRequest(r *http.Request) (service.RegisterInput, func(), error) {
	cleanup := func() {}

	var in service.RegisterInput
	var confirm string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return in, cleanup, errInvalidBody
		}

		in.Username = r.FormValue("username")
		in.Email = r.FormValue("email")
		in.Password = r.FormValue("password")
		confirm = r.FormValue("confirm_password")

		file, header, err := r.FormFile("profile_image")
		if err == nil {
			cleanup = func() { _ = file.Close() }
			in.ProfileImage = &service.Upload{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Reader:      file,
			}
		} else if !errors.Is(err, http.ErrMissingFile) {
			return in, cleanup, errInvalidBody
		}
	} else {
		var req struct {
			Username        string `json:"username"`
			Email           string `json:"email"`
			Password        string `json:"password"`
			ConfirmPassword string `json:"confirm_password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			return in, cleanup, err
		}
		in.Username = req.Username
		in.Email = req.Email
		in.Password = req.Password
		confirm = req.ConfirmPassword
	}

	if err := validateUsername(in.Username); err != nil {
		return in, cleanup, err
	}
	if err := validateEmail(in.Email); err != nil {
		return in, cleanup, err
	}
	if err := validatePassword(in.Password, confirm); err != nil {
		return in, cleanup, err
	}

	return in, cleanup, nil
}

type validationError string

func (e validationError) Error() string { return string(e) }

const errInvalidBody = validationError("invalid request body")

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return validationError("invalid email address")
	}
	return nil
}

func validateUsername(username string) error {
	if len(strings.TrimSpace(username)) < 3 {
		return validationError("username must be at least 3 characters")
	}
	return nil
}

func validatePassword(password, confirm string) error {
	if len(password) < 8 {
		return validationError("password must be at least 8 characters")
	}
	if password != confirm {
		return validationError("passwords do not match")
	}
	return nil
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
