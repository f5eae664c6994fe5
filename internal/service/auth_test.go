package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shibinnakam/cochin-backoffice/internal/auth"
	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/internal/event"
	"github.com/shibinnakam/cochin-backoffice/internal/identity"
	notificationmock "github.com/shibinnakam/cochin-backoffice/internal/notification/mock"
	"github.com/shibinnakam/cochin-backoffice/internal/repository/repositorytest"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthService(users *repositorytest.MockUserRepository, staff *repositorytest.MockStaffRepository) (*AuthService, *auth.TokenManager) {
	logger := testLogger()
	tokens := auth.NewTokenManager("test-secret-key-that-is-long-enough")
	resolver := identity.NewResolver(staff, users)
	sender := notificationmock.NewSender(logger)
	producer := event.NewProducer(nil, logger)
	svc := NewAuthService(users, staff, resolver, tokens, sender, producer, "http://localhost:3000", logger)
	return svc, tokens
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := svc.Register(ctx, RegisterInput{
			Email:    "alice@example.com",
			Password: "Password1",
			Name:     "Alice",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, user.ID)
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.Equal(t, domain.VerificationPending, user.VerificationStatus)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "Password1", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Password1")))
		users.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("Create", ctx, mock.Anything).
			Return(apperrors.AlreadyExists("user", "email", "alice@example.com"))

		_, err := svc.Register(ctx, RegisterInput{
			Email:    "alice@example.com",
			Password: "Password1",
			Name:     "Alice",
		})
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	})

	t.Run("rejects weak passwords", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		for _, password := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
			_, err := svc.Register(ctx, RegisterInput{
				Email:    "alice@example.com",
				Password: password,
				Name:     "Alice",
			})
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "password %q should be rejected", password)
		}
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("requires email and name", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		_, err := svc.Register(ctx, RegisterInput{Password: "Password1", Name: "Alice"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "Password1"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("user login succeeds", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, tokens := newAuthService(users, staff)

		users.On("GetByEmail", ctx, "alice@example.com").Return(&domain.User{
			ID:           "user-1",
			Email:        "alice@example.com",
			PasswordHash: hashPassword(t, "Password1"),
			Name:         "Alice",
			Role:         domain.RoleUser,
		}, nil)

		result, err := svc.Login(ctx, "alice@example.com", "Password1")
		require.NoError(t, err)

		assert.Equal(t, "user-1", result.Principal.ID)
		assert.Equal(t, domain.PrincipalKindUser, result.Principal.Kind)
		assert.Equal(t, "/", result.Redirect)

		claims, err := tokens.Verify(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.PrincipalID)
		assert.Equal(t, domain.RoleUser, claims.Role)

		staff.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("GetByEmail", ctx, "alice@example.com").Return(&domain.User{
			ID:           "user-1",
			PasswordHash: hashPassword(t, "Password1"),
		}, nil)

		_, err := svc.Login(ctx, "alice@example.com", "WrongPass1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("blocked user cannot log in", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("GetByEmail", ctx, "alice@example.com").Return(&domain.User{
			ID:           "user-1",
			PasswordHash: hashPassword(t, "Password1"),
			IsBlocked:    true,
		}, nil)

		_, err := svc.Login(ctx, "alice@example.com", "Password1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("falls back to staff store", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, tokens := newAuthService(users, staff)

		users.On("GetByEmail", ctx, "bob@example.com").
			Return(nil, apperrors.NotFound("user", "bob@example.com"))
		staff.On("GetByEmail", ctx, "bob@example.com").Return(&domain.Staff{
			ID:           "staff-1",
			Email:        "bob@example.com",
			PasswordHash: hashPassword(t, "Password1"),
			Role:         domain.RoleStaff,
			Status:       domain.StaffStatusActive,
			IsRegistered: true,
		}, nil)

		result, err := svc.Login(ctx, "bob@example.com", "Password1")
		require.NoError(t, err)

		assert.Equal(t, domain.PrincipalKindStaff, result.Principal.Kind)
		assert.Equal(t, "/staff", result.Redirect)

		claims, err := tokens.Verify(result.Token)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleStaff, claims.Role)
	})

	t.Run("unapproved staff gets forbidden", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("GetByEmail", ctx, "bob@example.com").
			Return(nil, apperrors.NotFound("user", "bob@example.com"))
		staff.On("GetByEmail", ctx, "bob@example.com").Return(&domain.Staff{
			ID:           "staff-1",
			PasswordHash: hashPassword(t, "Password1"),
			Status:       domain.StaffStatusPending,
			IsRegistered: true,
		}, nil)

		_, err := svc.Login(ctx, "bob@example.com", "Password1")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("admin redirects to admin dashboard", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("GetByEmail", ctx, "root@example.com").
			Return(nil, apperrors.NotFound("user", "root@example.com"))
		staff.On("GetByEmail", ctx, "root@example.com").Return(&domain.Staff{
			ID:           "staff-admin",
			PasswordHash: hashPassword(t, "Password1"),
			Role:         domain.RoleAdmin,
			Status:       domain.StaffStatusActive,
			IsRegistered: true,
		}, nil)

		result, err := svc.Login(ctx, "root@example.com", "Password1")
		require.NoError(t, err)
		assert.Equal(t, "/admin", result.Redirect)
	})

	t.Run("unknown email in both stores", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("GetByEmail", ctx, "ghost@example.com").
			Return(nil, apperrors.NotFound("user", "ghost@example.com"))
		staff.On("GetByEmail", ctx, "ghost@example.com").
			Return(nil, apperrors.NotFound("staff", "ghost@example.com"))

		_, err := svc.Login(ctx, "ghost@example.com", "Password1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		dbErr := errors.New("connection refused")
		users.On("GetByEmail", ctx, "alice@example.com").Return(nil, dbErr)

		_, err := svc.Login(ctx, "alice@example.com", "Password1")
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email reports success", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("GetByEmail", ctx, "ghost@example.com").
			Return(nil, apperrors.NotFound("user", "ghost@example.com"))

		err := svc.ForgotPassword(ctx, "ghost@example.com")
		assert.NoError(t, err)
		users.AssertNotCalled(t, "SetResetTicket", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stores hashed ticket for known email", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("GetByEmail", ctx, "alice@example.com").Return(&domain.User{
			ID:    "user-1",
			Email: "alice@example.com",
		}, nil)

		var storedHash string
		var storedExpiry time.Time
		users.On("SetResetTicket", ctx, "user-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Run(func(args mock.Arguments) {
				storedHash = args.String(2)
				storedExpiry = args.Get(3).(time.Time)
			}).
			Return(nil)

		err := svc.ForgotPassword(ctx, "alice@example.com")
		require.NoError(t, err)

		// SHA-256 hex digest of the raw token.
		assert.Len(t, storedHash, 64)
		assert.WithinDuration(t, time.Now().UTC().Add(auth.ResetTicketTTL), storedExpiry, 5*time.Second)
		users.AssertExpectations(t)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes ticket and sets password", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		token := "raw-reset-token"
		user := &domain.User{ID: "user-1", PasswordHash: hashPassword(t, "OldPass1x")}

		users.On("GetByResetTokenHash", ctx, auth.HashResetToken(token)).Return(user, nil)
		users.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("NewPass1x")) == nil
		})).Return(nil)
		users.On("ClearResetTicket", ctx, "user-1").Return(nil)

		err := svc.ResetPassword(ctx, token, "NewPass1x")
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("unknown or expired ticket", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("GetByResetTokenHash", ctx, mock.Anything).
			Return(nil, apperrors.NotFound("user", "by reset ticket"))

		err := svc.ResetPassword(ctx, "stale-token", "NewPass1x")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("weak replacement password", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		err := svc.ResetPassword(ctx, "token", "weak")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		users.AssertNotCalled(t, "GetByResetTokenHash", mock.Anything, mock.Anything)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("updates fields", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("GetByID", ctx, "user-1").Return(&domain.User{ID: "user-1", Name: "Alice"}, nil)
		users.On("Update", ctx, mock.Anything).Return(nil)

		name := "Alice B"
		phone := "9876543210"
		updated, err := svc.UpdateProfile(ctx, "user-1", UpdateProfileInput{Name: &name, Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, "Alice B", updated.Name)
		assert.Equal(t, "9876543210", updated.Phone)
	})

	t.Run("password change requires current password", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("GetByID", ctx, "user-1").Return(&domain.User{
			ID:           "user-1",
			PasswordHash: hashPassword(t, "Current1x"),
		}, nil)

		_, err := svc.UpdateProfile(ctx, "user-1", UpdateProfileInput{
			CurrentPassword: "WrongCurrent1",
			NewPassword:     "NewPass1x",
		})
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("password change with correct current password", func(t *testing.T) {
		users := new(repositorytest.MockUserRepository)
		staff := new(repositorytest.MockStaffRepository)
		svc, _ := newAuthService(users, staff)

		users.On("GetByID", ctx, "user-1").Return(&domain.User{
			ID:           "user-1",
			PasswordHash: hashPassword(t, "Current1x"),
		}, nil)
		users.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("NewPass1x")) == nil
		})).Return(nil)

		_, err := svc.UpdateProfile(ctx, "user-1", UpdateProfileInput{
			CurrentPassword: "Current1x",
			NewPassword:     "NewPass1x",
		})
		require.NoError(t, err)
		users.AssertExpectations(t)
	})
}

func TestAuthService_SetVerification(t *testing.T) {
	ctx := context.Background()

	users := new(repositorytest.MockUserRepository)
	staff := new(repositorytest.MockStaffRepository)
	svc, _ := newAuthService(users, staff)

	users.On("GetByID", ctx, "user-1").Return(&domain.User{
		ID:                 "user-1",
		VerificationStatus: domain.VerificationPending,
	}, nil)
	users.On("Update", ctx, mock.Anything).Return(nil)

	user, err := svc.SetVerification(ctx, "user-1", true)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Equal(t, domain.VerificationVerified, user.VerificationStatus)
}
