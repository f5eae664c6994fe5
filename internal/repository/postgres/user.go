package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/pkg/database"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, phone, role, google_id, is_active, is_blocked,
		verification_status, is_verified, photo_url, reset_token_hash, reset_token_expiry, created_at, updated_at`

// Create inserts a new user into the database. Emails are stored lowercase;
// uniqueness of email and google_id is enforced by DB constraints.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, phone, role, google_id, is_active, is_blocked,
			verification_status, is_verified, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query,
		u.ID,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.Name,
		u.Phone,
		u.Role,
		u.GoogleID,
		u.IsActive,
		u.IsBlocked,
		u.VerificationStatus,
		u.IsVerified,
		u.PhotoURL,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

// GetByEmail retrieves a user by their email address, matched lowercase.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, strings.ToLower(email))
}

// GetByGoogleID retrieves a user by their linked Google account id.
func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return r.scanUser(ctx, query, googleID)
}

// GetByResetTokenHash retrieves the user owning a reset ticket that has not
// expired yet.
func (r *UserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = $1 AND reset_token_expiry > NOW()`
	return r.scanUser(ctx, query, tokenHash)
}

// Update modifies an existing user in the database.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, phone = $4, role = $5,
		    google_id = NULLIF($6, ''), is_active = $7, is_blocked = $8,
		    verification_status = $9, is_verified = $10, photo_url = $11, updated_at = $12
		WHERE id = $13`

	ct, err := r.db.Exec(ctx, query,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.Name,
		u.Phone,
		u.Role,
		u.GoogleID,
		u.IsActive,
		u.IsBlocked,
		u.VerificationStatus,
		u.IsVerified,
		u.PhotoURL,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", u.ID)
	}

	return nil
}

// SetResetTicket stores a reset ticket on the user, replacing any prior one.
func (r *UserRepository) SetResetTicket(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE users SET reset_token_hash = $1, reset_token_expiry = $2, updated_at = $3 WHERE id = $4`

	ct, err := r.db.Exec(ctx, query, tokenHash, expiresAt, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("set reset ticket: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", userID)
	}

	return nil
}

// ClearResetTicket removes the user's reset ticket.
func (r *UserRepository) ClearResetTicket(ctx context.Context, userID string) error {
	query := `UPDATE users SET reset_token_hash = NULL, reset_token_expiry = NULL, updated_at = $1 WHERE id = $2`

	_, err := r.db.Exec(ctx, query, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("clear reset ticket: %w", err)
	}

	return nil
}

// List returns all users ordered by creation time, newest first.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	if users == nil {
		users = []domain.User{}
	}

	return users, nil
}

// Count returns the total number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// scanUser is a helper that executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	u, err := scanUserRow(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func scanUserRow(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var googleID, resetHash *string
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Phone,
		&u.Role,
		&googleID,
		&u.IsActive,
		&u.IsBlocked,
		&u.VerificationStatus,
		&u.IsVerified,
		&u.PhotoURL,
		&resetHash,
		&u.ResetTokenExpiry,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if googleID != nil {
		u.GoogleID = *googleID
	}
	if resetHash != nil {
		u.ResetTokenHash = *resetHash
	}
	return &u, nil
}
