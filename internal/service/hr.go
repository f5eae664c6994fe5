package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/internal/event"
	"github.com/shibinnakam/cochin-backoffice/internal/notification"
	"github.com/shibinnakam/cochin-backoffice/internal/repository"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

// HRService handles resignations and leave requests. Decisions are terminal:
// once approved or rejected a request never changes again.
type HRService struct {
	resignationRepo repository.ResignationRepository
	leaveRepo       repository.LeaveRepository
	staffRepo       repository.StaffRepository
	sender          notification.Sender
	producer        *event.Producer
	logger          *slog.Logger
}

// NewHRService creates a new HR service.
func NewHRService(
	resignationRepo repository.ResignationRepository,
	leaveRepo repository.LeaveRepository,
	staffRepo repository.StaffRepository,
	sender notification.Sender,
	producer *event.Producer,
	logger *slog.Logger,
) *HRService {
	return &HRService{
		resignationRepo: resignationRepo,
		leaveRepo:       leaveRepo,
		staffRepo:       staffRepo,
		sender:          sender,
		producer:        producer,
		logger:          logger,
	}
}

// --- Resignations ---

// ApplyResignation files a resignation request for the staff member.
func (s *HRService) ApplyResignation(ctx context.Context, staffID, reason string) (*domain.Resignation, error) {
	if reason == "" {
		return nil, apperrors.InvalidInput("reason is required")
	}

	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("get staff for resignation: %w", err)
	}
	if staff.Status != domain.StaffStatusActive {
		return nil, apperrors.InvalidInput("only active staff can resign")
	}

	// One live request at a time.
	existing, err := s.resignationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resignations: %w", err)
	}
	for i := range existing {
		if existing[i].StaffID == staffID && existing[i].Status == domain.DecisionPending {
			return nil, apperrors.AlreadyExists("resignation", "staff_id", staffID)
		}
	}

	now := time.Now().UTC()
	r := &domain.Resignation{
		ID:        uuid.New().String(),
		StaffID:   staffID,
		Reason:    reason,
		Status:    domain.DecisionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.resignationRepo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create resignation: %w", err)
	}

	s.logger.InfoContext(ctx, "resignation filed",
		slog.String("resignation_id", r.ID),
		slog.String("staff_id", staffID),
	)

	return r, nil
}

// ListResignations returns all resignation requests, newest first.
func (s *HRService) ListResignations(ctx context.Context) ([]domain.Resignation, error) {
	list, err := s.resignationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resignations: %w", err)
	}
	return list, nil
}

// DecideResignation records an admin's decision. Approval deactivates the
// staff account.
func (s *HRService) DecideResignation(ctx context.Context, resignationID, decision, decidedBy string) (*domain.Resignation, error) {
	if !domain.ValidDecision(decision) {
		return nil, apperrors.InvalidInput("decision must be approved or rejected")
	}

	r, err := s.resignationRepo.GetByID(ctx, resignationID)
	if err != nil {
		return nil, fmt.Errorf("get resignation: %w", err)
	}
	if r.Status != domain.DecisionPending {
		return nil, apperrors.InvalidInput("resignation is already decided")
	}

	r.Status = decision
	r.DecidedBy = decidedBy
	r.UpdatedAt = time.Now().UTC()

	if err := s.resignationRepo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update resignation: %w", err)
	}

	staff, err := s.staffRepo.GetByID(ctx, r.StaffID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get staff for resignation decision: %w", err)
		}
		staff = nil
	}

	if decision == domain.DecisionApproved && staff != nil {
		staff.Status = domain.StaffStatusDeactivated
		staff.UpdatedAt = time.Now().UTC()
		if err := s.staffRepo.Update(ctx, staff); err != nil {
			return nil, fmt.Errorf("deactivate resigned staff: %w", err)
		}
	}

	if staff != nil {
		s.sendMail(ctx, staff.Email, "Resignation "+decision,
			fmt.Sprintf("<p>Hi %s, your resignation request has been %s.</p>", staff.Name, decision))
	}

	if err := s.producer.PublishResignationDecided(ctx, r); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish resignation.decided event",
			slog.String("resignation_id", r.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "resignation decided",
		slog.String("resignation_id", r.ID),
		slog.String("decision", decision),
	)

	return r, nil
}

// --- Leaves ---

// RequestLeave files a leave request covering an inclusive date range.
func (s *HRService) RequestLeave(ctx context.Context, staffID string, from, to time.Time, reason string) (*domain.Leave, error) {
	if reason == "" {
		return nil, apperrors.InvalidInput("reason is required")
	}
	if to.Before(from) {
		return nil, apperrors.InvalidInput("leave end date must not precede start date")
	}

	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		return nil, fmt.Errorf("get staff for leave: %w", err)
	}

	now := time.Now().UTC()
	l := &domain.Leave{
		ID:        uuid.New().String(),
		StaffID:   staffID,
		FromDate:  from,
		ToDate:    to,
		Reason:    reason,
		Status:    domain.DecisionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.leaveRepo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create leave request: %w", err)
	}

	s.logger.InfoContext(ctx, "leave requested",
		slog.String("leave_id", l.ID),
		slog.String("staff_id", staffID),
		slog.Int("days", l.Days()),
	)

	return l, nil
}

// ListLeaves returns all leave requests, newest first.
func (s *HRService) ListLeaves(ctx context.Context) ([]domain.Leave, error) {
	list, err := s.leaveRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	return list, nil
}

// ListMyLeaves returns the staff member's own leave requests.
func (s *HRService) ListMyLeaves(ctx context.Context, staffID string) ([]domain.Leave, error) {
	list, err := s.leaveRepo.ListByStaffID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("list leaves for staff: %w", err)
	}
	return list, nil
}

// LeaveStats aggregates a staff member's leave history. Only approved leaves
// count toward days used.
func (s *HRService) LeaveStats(ctx context.Context, staffID string) (*domain.LeaveStats, error) {
	leaves, err := s.leaveRepo.ListByStaffID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("list leaves for stats: %w", err)
	}

	stats := &domain.LeaveStats{Total: len(leaves)}
	for i := range leaves {
		switch leaves[i].Status {
		case domain.DecisionApproved:
			stats.Approved++
			stats.DaysUsed += leaves[i].Days()
		case domain.DecisionRejected:
			stats.Rejected++
		default:
			stats.Pending++
		}
	}

	return stats, nil
}

// DecideLeave records an admin's decision on a leave request.
func (s *HRService) DecideLeave(ctx context.Context, leaveID, decision, decidedBy string) (*domain.Leave, error) {
	if !domain.ValidDecision(decision) {
		return nil, apperrors.InvalidInput("decision must be approved or rejected")
	}

	l, err := s.leaveRepo.GetByID(ctx, leaveID)
	if err != nil {
		return nil, fmt.Errorf("get leave request: %w", err)
	}
	if l.Status != domain.DecisionPending {
		return nil, apperrors.InvalidInput("leave request is already decided")
	}

	l.Status = decision
	l.DecidedBy = decidedBy
	l.UpdatedAt = time.Now().UTC()

	if err := s.leaveRepo.Update(ctx, l); err != nil {
		return nil, fmt.Errorf("update leave request: %w", err)
	}

	s.logger.InfoContext(ctx, "leave decided",
		slog.String("leave_id", l.ID),
		slog.String("decision", decision),
	)

	return l, nil
}

func (s *HRService) sendMail(ctx context.Context, to, subject, html string) {
	err := s.sender.Send(ctx, &notification.Email{To: to, Subject: subject, HTML: html})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send email",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
	}
}
