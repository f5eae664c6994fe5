package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/pkg/database"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

func newUserTestFixture(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewUserRepository(mock)
	return repo, mock
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:                 "u-1234",
		Email:              "alice@example.com",
		PasswordHash:       "hash-abc",
		Name:               "Alice Smith",
		Phone:              "+919876543210",
		Role:               domain.RoleUser,
		IsActive:           true,
		VerificationStatus: domain.VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// userTestColumns mirrors the columns scanned by scanUserRow.
func userTestColumns() []string {
	return []string{
		"id", "email", "password_hash", "name", "phone", "role", "google_id",
		"is_active", "is_blocked", "verification_status", "is_verified",
		"photo_url", "reset_token_hash", "reset_token_expiry", "created_at", "updated_at",
	}
}

func userRow(u *domain.User) *pgxmock.Rows {
	var googleID, resetHash *string
	if u.GoogleID != "" {
		googleID = &u.GoogleID
	}
	if u.ResetTokenHash != "" {
		resetHash = &u.ResetTokenHash
	}
	return pgxmock.NewRows(userTestColumns()).AddRow(
		u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.Role, googleID,
		u.IsActive, u.IsBlocked, u.VerificationStatus, u.IsVerified,
		u.PhotoURL, resetHash, u.ResetTokenExpiry, u.CreatedAt, u.UpdatedAt,
	)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestUserRepository_Create_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.Role, u.GoogleID,
			u.IsActive, u.IsBlocked, u.VerificationStatus, u.IsVerified,
			u.PhotoURL, u.CreatedAt, u.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_LowercasesEmail(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	u.Email = "Alice@Example.COM"

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, "alice@example.com", u.PasswordHash, u.Name, u.Phone, u.Role, u.GoogleID,
			u.IsActive, u.IsBlocked, u.VerificationStatus, u.IsVerified,
			u.PhotoURL, u.CreatedAt, u.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.Role, u.GoogleID,
			u.IsActive, u.IsBlocked, u.VerificationStatus, u.IsVerified,
			u.PhotoURL, u.CreatedAt, u.UpdatedAt,
		).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists), "expected ErrAlreadyExists, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

func TestUserRepository_GetByID_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(u.ID).
		WillReturnRows(userRow(u))

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_LowercasesLookup(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE email =").
		WithArgs("alice@example.com").
		WillReturnRows(userRow(u))

	got, err := repo.GetByEmail(context.Background(), "Alice@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByGoogleID(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	u.GoogleID = "google-999"

	mock.ExpectQuery("SELECT .+ FROM users WHERE google_id =").
		WithArgs("google-999").
		WillReturnRows(userRow(u))

	got, err := repo.GetByGoogleID(context.Background(), "google-999")
	require.NoError(t, err)
	assert.Equal(t, "google-999", got.GoogleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByResetTokenHash(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	u.ResetTokenHash = "hash-xyz"
	expiry := time.Now().UTC().Add(10 * time.Minute)
	u.ResetTokenExpiry = &expiry

	mock.ExpectQuery("SELECT .+ FROM users WHERE reset_token_hash =").
		WithArgs("hash-xyz").
		WillReturnRows(userRow(u))

	got, err := repo.GetByResetTokenHash(context.Background(), "hash-xyz")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Update / reset ticket
// ---------------------------------------------------------------------------

func TestUserRepository_Update_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("UPDATE users").
		WithArgs(
			u.Email, u.PasswordHash, u.Name, u.Phone, u.Role, u.GoogleID,
			u.IsActive, u.IsBlocked, u.VerificationStatus, u.IsVerified,
			u.PhotoURL, pgxmock.AnyArg(), u.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), u)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetResetTicket(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	expiry := time.Now().UTC().Add(15 * time.Minute)

	mock.ExpectExec("UPDATE users SET reset_token_hash").
		WithArgs("hash-1", expiry, pgxmock.AnyArg(), "u-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SetResetTicket(context.Background(), "u-1234", "hash-1", expiry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ClearResetTicket(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE users SET reset_token_hash = NULL").
		WithArgs(pgxmock.AnyArg(), "u-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.ClearResetTicket(context.Background(), "u-1234")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// List / Count
// ---------------------------------------------------------------------------

func TestUserRepository_Count(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List_Empty(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users ORDER BY").
		WillReturnRows(pgxmock.NewRows(userTestColumns()))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
