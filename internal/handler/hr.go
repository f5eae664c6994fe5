package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shibinnakam/cochin-backoffice/internal/service"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
	"github.com/shibinnakam/cochin-backoffice/pkg/httputil"
	"github.com/shibinnakam/cochin-backoffice/pkg/validator"
)

const dateLayout = "2006-01-02"

// HRHandler exposes resignation and leave endpoints.
type HRHandler struct {
	hr     *service.HRService
	logger *slog.Logger
}

// NewHRHandler creates a new HR handler.
func NewHRHandler(hr *service.HRService, logger *slog.Logger) *HRHandler {
	return &HRHandler{hr: hr, logger: logger}
}

type applyResignationRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type decisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
}

type requestLeaveRequest struct {
	FromDate string `json:"from_date" validate:"required"`
	ToDate   string `json:"to_date" validate:"required"`
	Reason   string `json:"reason" validate:"required,min=3,max=500"`
}

// ApplyResignation handles POST /api/v1/resignations.
func (h *HRHandler) ApplyResignation(w http.ResponseWriter, r *http.Request) {
	var req applyResignationRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	p := PrincipalFromContext(r.Context())
	resignation, err := h.hr.ApplyResignation(r.Context(), p.ID, req.Reason)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: resignation})
}

// ListResignations handles GET /api/v1/resignations. Admin only.
func (h *HRHandler) ListResignations(w http.ResponseWriter, r *http.Request) {
	list, err := h.hr.ListResignations(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: list})
}

// DecideResignation handles PATCH /api/v1/resignations/{id}/decision. Admin only.
func (h *HRHandler) DecideResignation(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	p := PrincipalFromContext(r.Context())
	resignation, err := h.hr.DecideResignation(r.Context(), chi.URLParam(r, "id"), req.Decision, p.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resignation})
}

// RequestLeave handles POST /api/v1/leaves.
func (h *HRHandler) RequestLeave(w http.ResponseWriter, r *http.Request) {
	var req requestLeaveRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	from, err := time.Parse(dateLayout, req.FromDate)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("from_date must be YYYY-MM-DD"), h.logger)
		return
	}
	to, err := time.Parse(dateLayout, req.ToDate)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("to_date must be YYYY-MM-DD"), h.logger)
		return
	}

	p := PrincipalFromContext(r.Context())
	leave, err := h.hr.RequestLeave(r.Context(), p.ID, from, to, req.Reason)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: leave})
}

// ListLeaves handles GET /api/v1/leaves. Admin only.
func (h *HRHandler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	list, err := h.hr.ListLeaves(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: list})
}

// MyLeaves handles GET /api/v1/leaves/my.
func (h *HRHandler) MyLeaves(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())

	list, err := h.hr.ListMyLeaves(r.Context(), p.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: list})
}

// LeaveStats handles GET /api/v1/leaves/stats.
func (h *HRHandler) LeaveStats(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())

	stats, err := h.hr.LeaveStats(r.Context(), p.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

// DecideLeave handles PATCH /api/v1/leaves/{id}/decision. Admin only.
func (h *HRHandler) DecideLeave(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	p := PrincipalFromContext(r.Context())
	leave, err := h.hr.DecideLeave(r.Context(), chi.URLParam(r, "id"), req.Decision, p.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: leave})
}
