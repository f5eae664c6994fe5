package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/internal/service"
	"github.com/shibinnakam/cochin-backoffice/pkg/httputil"
	"github.com/shibinnakam/cochin-backoffice/pkg/validator"
)

// StaffHandler exposes the worker account lifecycle endpoints.
type StaffHandler struct {
	staff  *service.StaffService
	logger *slog.Logger
}

// NewStaffHandler creates a new staff handler.
func NewStaffHandler(staff *service.StaffService, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{staff: staff, logger: logger}
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type completeRegistrationRequest struct {
	Token       string `json:"token" validate:"required"`
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Password    string `json:"password" validate:"required,min=8"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	Designation string `json:"designation" validate:"omitempty,max=100"`
}

type setStaffStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=invited pending active deactivated"`
}

type updateStaffRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
	Phone           *string `json:"phone" validate:"omitempty,max=20"`
	Designation     *string `json:"designation" validate:"omitempty,max=100"`
	PhotoURL        *string `json:"photo_url" validate:"omitempty,url"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password" validate:"omitempty,min=8"`
}

// staffStats summarizes the staff roster by lifecycle status.
type staffStats struct {
	Total       int `json:"total"`
	Invited     int `json:"invited"`
	Pending     int `json:"pending"`
	Active      int `json:"active"`
	Deactivated int `json:"deactivated"`
}

// Invite handles POST /api/v1/staff/invite. Admin only.
func (h *StaffHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	invited, err := h.staff.Invite(r.Context(), req.Email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: invited})
}

// Register handles POST /api/v1/staff/register. Public; the invite token is
// the credential.
func (h *StaffHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req completeRegistrationRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	registered, err := h.staff.CompleteRegistration(r.Context(), service.CompleteRegistrationInput{
		Token:       req.Token,
		Name:        req.Name,
		Password:    req.Password,
		Phone:       req.Phone,
		Designation: req.Designation,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: registered})
}

// CheckSubmitted handles GET /api/v1/staff/check-submitted/{token}. Public;
// lets the registration page tell a fresh invite link from a used one.
func (h *StaffHandler) CheckSubmitted(w http.ResponseWriter, r *http.Request) {
	submitted, err := h.staff.CheckSubmitted(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{"submitted": submitted}})
}

// Approve handles POST /api/v1/staff/approve/{id}. Admin only.
func (h *StaffHandler) Approve(w http.ResponseWriter, r *http.Request) {
	approved, err := h.staff.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: approved})
}

// SetStatus handles PATCH /api/v1/staff/status/{id}. Admin only.
func (h *StaffHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStaffStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	updated, err := h.staff.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: updated})
}

// Me handles GET /api/v1/staff/me.
func (h *StaffHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())

	me, err := h.staff.Get(r.Context(), p.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: me})
}

// Update handles PUT /api/v1/staff/update. Staff update their own record.
func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateStaffRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	p := PrincipalFromContext(r.Context())
	updated, err := h.staff.UpdateProfile(r.Context(), p.ID, service.UpdateStaffInput{
		Name:            req.Name,
		Phone:           req.Phone,
		Designation:     req.Designation,
		PhotoURL:        req.PhotoURL,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: updated})
}

// List handles GET /api/v1/staff. Admin only.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.staff.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: list})
}

// Delete handles DELETE /api/v1/staff/{id}. Admin only.
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.staff.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"message": "staff deleted",
	}})
}

// Count handles GET /api/v1/staff/count. Admin only.
func (h *StaffHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.staff.Count(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int{"count": count}})
}

// Stats handles GET /api/v1/staff/stats. Admin only.
func (h *StaffHandler) Stats(w http.ResponseWriter, r *http.Request) {
	list, err := h.staff.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	stats := staffStats{Total: len(list)}
	for i := range list {
		switch list[i].Status {
		case domain.StaffStatusInvited:
			stats.Invited++
		case domain.StaffStatusPending:
			stats.Pending++
		case domain.StaffStatusActive:
			stats.Active++
		case domain.StaffStatusDeactivated:
			stats.Deactivated++
		}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}
