package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shibinnakam/cochin-backoffice/internal/auth"
	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/internal/event"
	"github.com/shibinnakam/cochin-backoffice/internal/notification"
	"github.com/shibinnakam/cochin-backoffice/internal/repository"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

// StaffService implements the worker account lifecycle: an admin invites by
// email, the invitee registers against the invite token, and an admin
// approves the registration before the account can log in.
type StaffService struct {
	staffRepo repository.StaffRepository
	userRepo  repository.UserRepository
	tokens    *auth.TokenManager
	sender    notification.Sender
	producer  *event.Producer
	clientURL string
	logger    *slog.Logger
}

// NewStaffService creates a new staff service.
func NewStaffService(
	staffRepo repository.StaffRepository,
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	sender notification.Sender,
	producer *event.Producer,
	clientURL string,
	logger *slog.Logger,
) *StaffService {
	return &StaffService{
		staffRepo: staffRepo,
		userRepo:  userRepo,
		tokens:    tokens,
		sender:    sender,
		producer:  producer,
		clientURL: clientURL,
		logger:    logger,
	}
}

// CompleteRegistrationInput holds the fields the invitee submits against
// their invite token.
type CompleteRegistrationInput struct {
	Token       string
	Name        string
	Password    string
	Phone       string
	Designation string
}

// UpdateStaffInput holds the fields a staff member may change on their own
// record. A password change requires the current password.
type UpdateStaffInput struct {
	Name            *string
	Phone           *string
	Designation     *string
	PhotoURL        *string
	CurrentPassword string
	NewPassword     string
}

// Invite creates an invited staff record and emails a registration link
// carrying a signed invite token. An email already known to either principal
// store is rejected.
func (s *StaffService) Invite(ctx context.Context, email string) (*domain.Staff, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.AlreadyExists("account", "email", email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check user email: %w", err)
	}

	now := time.Now().UTC()
	staff := &domain.Staff{
		ID:        uuid.New().String(),
		Email:     email,
		Role:      domain.RoleStaff,
		Status:    domain.StaffStatusInvited,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.staffRepo.Create(ctx, staff); err != nil {
		return nil, fmt.Errorf("create staff invite: %w", err)
	}

	token, err := s.tokens.IssueInvite(email)
	if err != nil {
		return nil, fmt.Errorf("issue invite token: %w", err)
	}

	link := fmt.Sprintf("%s/staff/register/%s", s.clientURL, token)
	s.sendMail(ctx, email, "You are invited",
		fmt.Sprintf("<p>Complete your registration (link valid 48 hours): <a href=%q>%s</a></p>", link, link))

	s.logger.InfoContext(ctx, "staff invited",
		slog.String("staff_id", staff.ID),
		slog.String("email", email),
	)

	return staff, nil
}

// CompleteRegistration fills in the invited record from the invite token.
// The account stays pending until an admin approves it.
func (s *StaffService) CompleteRegistration(ctx context.Context, input CompleteRegistrationInput) (*domain.Staff, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	email, err := s.tokens.VerifyInvite(input.Token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired invite token")
	}

	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("invite", email)
		}
		return nil, fmt.Errorf("lookup invited staff: %w", err)
	}

	if staff.IsRegistered {
		return nil, apperrors.AlreadyExists("staff", "email", email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	staff.Name = input.Name
	staff.PasswordHash = string(hashedPassword)
	staff.Phone = input.Phone
	staff.Designation = input.Designation
	staff.IsRegistered = true
	staff.Status = domain.StaffStatusPending
	staff.UpdatedAt = time.Now().UTC()

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		return nil, fmt.Errorf("complete registration: %w", err)
	}

	s.logger.InfoContext(ctx, "staff registration completed",
		slog.String("staff_id", staff.ID),
		slog.String("email", staff.Email),
	)

	return staff, nil
}

// CheckSubmitted reports whether the invite behind the token has already
// been registered against. The registration page calls this before rendering
// the form so a used link shows a message instead of a duplicate-email error.
func (s *StaffService) CheckSubmitted(ctx context.Context, token string) (bool, error) {
	email, err := s.tokens.VerifyInvite(token)
	if err != nil {
		return false, apperrors.Unauthorized("invalid or expired invite token")
	}

	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, apperrors.NotFound("invite", email)
		}
		return false, fmt.Errorf("lookup invited staff: %w", err)
	}

	return staff.IsRegistered, nil
}

// Approve activates a pending staff account and stamps the join date.
func (s *StaffService) Approve(ctx context.Context, staffID string) (*domain.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("get staff for approval: %w", err)
	}

	if !staff.IsRegistered {
		return nil, apperrors.InvalidInput("staff has not completed registration")
	}
	if staff.Status == domain.StaffStatusActive {
		return nil, apperrors.InvalidInput("staff is already active")
	}

	now := time.Now().UTC()
	staff.Status = domain.StaffStatusActive
	staff.JoinDate = &now
	staff.UpdatedAt = now

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		return nil, fmt.Errorf("approve staff: %w", err)
	}

	s.sendMail(ctx, staff.Email, "Your account is approved",
		fmt.Sprintf("<p>Hi %s, your staff account is now active.</p>", staff.Name))

	if err := s.producer.PublishStaffApproved(ctx, staff); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish staff.approved event",
			slog.String("staff_id", staff.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "staff approved",
		slog.String("staff_id", staff.ID),
	)

	return staff, nil
}

// SetStatus changes a staff member's lifecycle status directly. Used by
// admins to deactivate or reinstate accounts.
func (s *StaffService) SetStatus(ctx context.Context, staffID, status string) (*domain.Staff, error) {
	if !domain.ValidStaffStatus(status) {
		return nil, apperrors.InvalidInput("invalid staff status")
	}

	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("get staff: %w", err)
	}

	staff.Status = status
	staff.UpdatedAt = time.Now().UTC()

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		return nil, fmt.Errorf("update staff status: %w", err)
	}

	s.logger.InfoContext(ctx, "staff status changed",
		slog.String("staff_id", staff.ID),
		slog.String("status", status),
	)

	return staff, nil
}

// Get retrieves a staff member by ID.
func (s *StaffService) Get(ctx context.Context, staffID string) (*domain.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("get staff: %w", err)
	}
	return staff, nil
}

// List returns all staff records.
func (s *StaffService) List(ctx context.Context) ([]domain.Staff, error) {
	staff, err := s.staffRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

// Count returns the total number of staff records.
func (s *StaffService) Count(ctx context.Context) (int, error) {
	count, err := s.staffRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count staff: %w", err)
	}
	return count, nil
}

// UpdateProfile updates a staff member's own record.
func (s *StaffService) UpdateProfile(ctx context.Context, staffID string, input UpdateStaffInput) (*domain.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("get staff for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		staff.Name = *input.Name
	}
	if input.Phone != nil {
		staff.Phone = *input.Phone
	}
	if input.Designation != nil {
		staff.Designation = *input.Designation
	}
	if input.PhotoURL != nil {
		staff.PhotoURL = *input.PhotoURL
	}

	if input.NewPassword != "" {
		if err := validatePassword(input.NewPassword); err != nil {
			return nil, err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(input.CurrentPassword)); err != nil {
			return nil, apperrors.Unauthorized("current password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash new password: %w", err)
		}
		staff.PasswordHash = string(hashed)
	}

	staff.UpdatedAt = time.Now().UTC()
	if err := s.staffRepo.Update(ctx, staff); err != nil {
		return nil, fmt.Errorf("update staff: %w", err)
	}

	return staff, nil
}

// Delete removes a staff record.
func (s *StaffService) Delete(ctx context.Context, staffID string) error {
	if err := s.staffRepo.Delete(ctx, staffID); err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}

	s.logger.InfoContext(ctx, "staff deleted",
		slog.String("staff_id", staffID),
	)

	return nil
}

func (s *StaffService) sendMail(ctx context.Context, to, subject, html string) {
	err := s.sender.Send(ctx, &notification.Email{To: to, Subject: subject, HTML: html})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send email",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
	}
}
