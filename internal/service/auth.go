package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shibinnakam/cochin-backoffice/internal/auth"
	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/internal/event"
	"github.com/shibinnakam/cochin-backoffice/internal/identity"
	"github.com/shibinnakam/cochin-backoffice/internal/notification"
	"github.com/shibinnakam/cochin-backoffice/internal/repository"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// AuthService implements registration, login, password recovery, and
// profile operations for self-registered accounts.
type AuthService struct {
	userRepo  repository.UserRepository
	staffRepo repository.StaffRepository
	resolver  *identity.Resolver
	tokens    *auth.TokenManager
	sender    notification.Sender
	producer  *event.Producer
	clientURL string
	logger    *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	staffRepo repository.StaffRepository,
	resolver *identity.Resolver,
	tokens *auth.TokenManager,
	sender notification.Sender,
	producer *event.Producer,
	clientURL string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		staffRepo: staffRepo,
		resolver:  resolver,
		tokens:    tokens,
		sender:    sender,
		producer:  producer,
		clientURL: clientURL,
		logger:    logger,
	}
}

// --- Input/Output types ---

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// LoginResult is what a successful login returns: the resolved principal,
// the bearer token, and the client route the UI should land on.
type LoginResult struct {
	Principal *domain.Principal
	Token     string
	Redirect  string
}

// UpdateProfileInput holds the parameters for updating a user's profile.
// A password change requires the current password.
type UpdateProfileInput struct {
	Name            *string
	Phone           *string
	PhotoURL        *string
	CurrentPassword string
	NewPassword     string
}

// --- Operations ---

// Register creates a new self-registered account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:                 uuid.New().String(),
		Email:              input.Email,
		PasswordHash:       string(hashedPassword),
		Name:               input.Name,
		Phone:              input.Phone,
		Role:               domain.RoleUser,
		IsActive:           true,
		VerificationStatus: domain.VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Welcome mail and event are side effects; neither may fail registration.
	s.sendMail(ctx, user.Email, "Welcome",
		fmt.Sprintf("<p>Hi %s, your account is ready.</p>", user.Name))

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates a principal with email and password. The user store is
// checked first, then the staff store. A deactivated or unapproved staff
// account is rejected with Forbidden rather than a credential error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		if !user.CanLogin() {
			return nil, apperrors.InvalidInput("invalid email or password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return nil, apperrors.InvalidInput("invalid email or password")
		}
		return s.loginResult(ctx, domain.PrincipalFromUser(user))
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("invalid email or password")
		}
		return nil, fmt.Errorf("lookup staff: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.InvalidInput("invalid email or password")
	}

	if !staff.IsLoginable() {
		return nil, apperrors.Forbidden("account is not active")
	}

	return s.loginResult(ctx, domain.PrincipalFromStaff(staff))
}

// LoginGoogle mints a login token for a Google-asserted identity. Account
// resolution and creation are delegated to the identity resolver.
func (s *AuthService) LoginGoogle(ctx context.Context, googleID, email, name string) (*LoginResult, error) {
	p, err := s.resolver.ResolveGoogle(ctx, googleID, email, name)
	if err != nil {
		return nil, fmt.Errorf("resolve google identity: %w", err)
	}

	if p.Kind == domain.PrincipalKindStaff {
		staff, err := s.staffRepo.GetByID(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("load staff for google login: %w", err)
		}
		if !staff.IsLoginable() {
			return nil, apperrors.Forbidden("account is not active")
		}
	}

	return s.loginResult(ctx, p)
}

// ForgotPassword issues a reset ticket and emails the reset link. The reply
// is identical whether or not the email exists, to avoid account enumeration.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.InfoContext(ctx, "password reset requested for unknown email",
				slog.String("email", email),
			)
			return nil
		}
		return fmt.Errorf("lookup user for reset: %w", err)
	}

	token, tokenHash, expiresAt, err := auth.NewResetTicket()
	if err != nil {
		return fmt.Errorf("generate reset ticket: %w", err)
	}

	// Overwrites any prior ticket: at most one is live per account.
	if err := s.userRepo.SetResetTicket(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("store reset ticket: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.clientURL, token)
	s.sendMail(ctx, user.Email, "Reset your password",
		fmt.Sprintf("<p>Reset link (valid 15 minutes): <a href=%q>%s</a></p>", link, link))

	if err := s.producer.PublishUserPasswordReset(ctx, user.ID, user.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_reset event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested",
		slog.String("user_id", user.ID),
	)

	return nil
}

// ResetPassword consumes a reset ticket and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperrors.InvalidInput("reset token is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByResetTokenHash(ctx, auth.HashResetToken(token))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.InvalidInput("invalid or expired reset token")
		}
		return fmt.Errorf("lookup reset ticket: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.userRepo.ClearResetTicket(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear reset ticket",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset completed",
		slog.String("user_id", user.ID),
	)

	return nil
}

// GetProfile retrieves a user by their ID.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return user, nil
}

// UpdateProfile updates a user's profile fields. Changing the password
// requires the current one.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		user.Name = *input.Name
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.PhotoURL != nil {
		user.PhotoURL = *input.PhotoURL
	}

	if input.NewPassword != "" {
		if err := validatePassword(input.NewPassword); err != nil {
			return nil, err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
			return nil, apperrors.Unauthorized("current password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash new password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.InfoContext(ctx, "user profile updated",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// SetVerification toggles a user's verification status. Admin only,
// enforced at the handler.
func (s *AuthService) SetVerification(ctx context.Context, userID string, verified bool) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user for verification: %w", err)
	}

	user.IsVerified = verified
	if verified {
		user.VerificationStatus = domain.VerificationVerified
	} else {
		user.VerificationStatus = domain.VerificationNotVerified
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update verification: %w", err)
	}

	return user, nil
}

// ListUsers returns all users.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CountUsers returns the total number of users.
func (s *AuthService) CountUsers(ctx context.Context) (int, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// --- Helpers ---

func (s *AuthService) loginResult(ctx context.Context, p *domain.Principal) (*LoginResult, error) {
	token, err := s.tokens.IssueLogin(p.ID, p.Role)
	if err != nil {
		return nil, fmt.Errorf("issue login token: %w", err)
	}

	s.logger.InfoContext(ctx, "login succeeded",
		slog.String("principal_id", p.ID),
		slog.String("role", p.Role),
	)

	return &LoginResult{
		Principal: p,
		Token:     token,
		Redirect:  redirectFor(p.Role),
	}, nil
}

// redirectFor maps a role to the client route the UI lands on after login.
func redirectFor(role string) string {
	switch role {
	case domain.RoleAdmin:
		return "/admin"
	case domain.RoleStaff:
		return "/staff"
	default:
		return "/"
	}
}

// sendMail delivers a transactional email, logging failures without
// propagating them.
func (s *AuthService) sendMail(ctx context.Context, to, subject, html string) {
	err := s.sender.Send(ctx, &notification.Email{To: to, Subject: subject, HTML: html})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send email",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
	}
}

// validatePassword checks that the password meets minimum complexity requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one uppercase letter, one lowercase letter, and one digit")
	}

	return nil
}
