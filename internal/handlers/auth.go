package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/edustack/trainer-portal/internal/auth"
	"github.com/edustack/trainer-portal/internal/models"
	"github.com/edustack/trainer-portal/internal/services"
	pkgauth "github.com/edustack/trainer-portal/pkg/auth"
	pkghttp "github.com/edustack/trainer-portal/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*services.LoginResponse, error)
	SetPermanentPassword(ctx context.Context, trainerID int64, newPassword string) error
	ForgotPassword(ctx context.Context, email, newPassword string) error
	GetProfile(ctx context.Context, trainerID int64) (*models.TrainerProfile, error)
}

// AuthHandler handles trainer authentication HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// MeResponse wraps the profile projection for GET /me
type MeResponse struct {
	Success bool                   `json:"success"`
	Data    *models.TrainerProfile `json:"data"`
}

// validateNewPassword enforces the password policy and the confirmation
// match before anything reaches the service.
func validateNewPassword(newPassword, confirmPassword string) error {
	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}
	if newPassword != confirmPassword {
		return errors.New("Passwords do not match")
	}
	return nil
}

// Login handles POST /api/trainer-auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteUnprocessableEntity(w, err.Error())
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	resp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Invalid credentials")
		case errors.Is(err, models.ErrWrongCredentials):
			pkghttp.WriteUnauthorized(w, "Wrong credentials")
		case errors.Is(err, models.ErrAccountDeactivated):
			pkghttp.WriteForbidden(w, "Account is deactivated. Contact admin.")
		case errors.Is(err, models.ErrPortalAccessDisabled):
			pkghttp.WriteForbidden(w, "Trainer portal access is disabled for this account.")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// SetPassword handles POST /api/trainer-auth/set-password. The guard has
// already validated the token and its scope.
func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	trainerID, err := claims.TrainerID()
	if err != nil {
		pkghttp.WriteUnauthorized(w, "Invalid or expired token")
		return
	}

	var req SetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteUnprocessableEntity(w, err.Error())
		return
	}

	if err := validateNewPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		pkghttp.WriteUnprocessableEntity(w, err.Error())
		return
	}

	if err := h.service.SetPermanentPassword(r.Context(), trainerID, req.NewPassword); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Trainer not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, "Password set successfully. Please login with your new password.")
}

// ForgotPassword handles POST /api/trainer-auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteUnprocessableEntity(w, err.Error())
		return
	}

	if err := validateNewPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		pkghttp.WriteUnprocessableEntity(w, err.Error())
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	if err := h.service.ForgotPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Email not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, "Password updated successfully. Please login.")
}

// Me handles GET /api/trainer-auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	trainerID, err := claims.TrainerID()
	if err != nil {
		pkghttp.WriteUnauthorized(w, "Invalid or expired token")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), trainerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Trainer not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MeResponse{Success: true, Data: profile})
}
