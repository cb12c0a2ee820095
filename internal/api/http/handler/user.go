package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/imagify/imagify-server/internal/logger"
	"github.com/imagify/imagify-server/internal/model"
	"github.com/imagify/imagify-server/internal/service"
)

// UserService defines profile operations for authenticated users.
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in service.UpdateProfileInput) (model.User, error)
	UpdateProfilePicture(ctx context.Context, userID uuid.UUID, upload service.Upload) (model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// User handles HTTP endpoints for the authenticated user's profile.
type User struct {
	userService    UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(userService UserService, contextManager model.ContextManager, logger *logger.Logger) *User {
	return &User{
		userService:    userService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type profileResponse struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Provider        string     `json:"provider"`
	IsVerified      bool       `json:"is_verified"`
	FirstName       *string    `json:"first_name"`
	LastName        *string    `json:"last_name"`
	PhoneNumber     *string    `json:"phone_number"`
	ProfileImageURL *string    `json:"profile_image_url"`
	LastLoginAt     *time.Time `json:"last_login_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

func newProfileResponse(user model.User) profileResponse {
	return profileResponse{
		ID:              user.ID.String(),
		Username:        user.Username,
		Email:           user.Email,
		Provider:        string(user.Provider),
		IsVerified:      user.IsVerified,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		PhoneNumber:     user.PhoneNumber,
		ProfileImageURL: user.ProfileImageURL,
		LastLoginAt:     user.LastLoginAt,
		CreatedAt:       user.CreatedAt,
	}
}

type updateProfileRequest struct {
	Username    *string `json:"username"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Me returns the authenticated user's profile.
func (h *User) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		handleError(w, model.NewErrUnauthenticated())
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		h.logger.Error("User handler: get profile failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newProfileResponse(user))
}

// UpdateProfile applies partial profile changes; absent fields stay as they
// are.
func (h *User) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		handleError(w, model.NewErrUnauthenticated())
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Username != nil {
		if err := validateUsername(*req.Username); err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.logger.Error("User handler: update profile failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("User handler: profile updated", "user_id", userID)

	writeJSON(w, http.StatusOK, newProfileResponse(user))
}

// UpdateProfilePicture replaces the profile image from a multipart form.
func (h *User) UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		handleError(w, model.NewErrUnauthenticated())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		badRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("profile_image")
	if err != nil {
		badRequest(w, "profile_image file is required")
		return
	}
	defer file.Close()

	user, err := h.userService.UpdateProfilePicture(r.Context(), userID, service.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	})
	if err != nil {
		h.logger.Error("User handler: update profile picture failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("User handler: profile picture updated", "user_id", userID)

	writeJSON(w, http.StatusOK, newProfileResponse(user))
}

// ChangePassword updates the password of the authenticated account.
func (h *User) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		handleError(w, model.NewErrUnauthenticated())
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.OldPassword == "" {
		badRequest(w, "old_password is required")
		return
	}
	if err := validatePassword(req.NewPassword, req.ConfirmPassword); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		h.logger.Error("User handler: change password failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("User handler: password changed", "user_id", userID)

	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

// DeleteAccount removes the authenticated account and its session.
func (h *User) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		handleError(w, model.NewErrUnauthenticated())
		return
	}

	if err := h.userService.DeleteAccount(r.Context(), userID); err != nil {
		h.logger.Error("User handler: delete account failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("User handler: account deleted", "user_id", userID)

	writeJSON(w, http.StatusOK, messageResponse{Message: "account deleted"})
}
