package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shibinnakam/cochin-backoffice/internal/service"
	"github.com/shibinnakam/cochin-backoffice/pkg/httputil"
	"github.com/shibinnakam/cochin-backoffice/pkg/validator"
)

// AuthHandler exposes registration, login, password recovery, and user
// profile endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type updateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
	Phone           *string `json:"phone" validate:"omitempty,max=20"`
	PhotoURL        *string `json:"photo_url" validate:"omitempty,url"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password" validate:"omitempty,min=8"`
}

type setVerificationRequest struct {
	Verified bool `json:"verified"`
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: user})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"token":    result.Token,
		"user":     result.Principal,
		"redirect": result.Redirect,
	}})
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. The response is
// the same whether or not the email exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"message": "if the email exists, a reset link has been sent",
	}})
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"message": "password has been reset",
	}})
}

// GetUser handles GET /api/v1/auth/user/{id}.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// UpdateUser handles PUT /api/v1/auth/user/{id}.
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), chi.URLParam(r, "id"), service.UpdateProfileInput{
		Name:            req.Name,
		Phone:           req.Phone,
		PhotoURL:        req.PhotoURL,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// SetVerification handles PATCH /api/v1/auth/user/{id}/verify. Admin only.
func (h *AuthHandler) SetVerification(w http.ResponseWriter, r *http.Request) {
	var req setVerificationRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.auth.SetVerification(r.Context(), chi.URLParam(r, "id"), req.Verified)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// ListUsers handles GET /api/v1/auth/users. Admin only.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: users})
}

// CountUsers handles GET /api/v1/auth/users/count. Admin only.
func (h *AuthHandler) CountUsers(w http.ResponseWriter, r *http.Request) {
	count, err := h.auth.CountUsers(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int{"count": count}})
}
