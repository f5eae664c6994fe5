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

// StaffRepository implements repository.StaffRepository using PostgreSQL.
type StaffRepository struct {
	db database.DBTX
}

// NewStaffRepository creates a new PostgreSQL-backed staff repository.
func NewStaffRepository(db database.DBTX) *StaffRepository {
	return &StaffRepository{db: db}
}

const staffColumns = `id, email, password_hash, name, phone, role, status, is_registered,
		designation, photo_url, join_date, created_at, updated_at`

// Create inserts a new staff record. Email uniqueness is enforced by a DB constraint.
func (r *StaffRepository) Create(ctx context.Context, s *domain.Staff) error {
	query := `
		INSERT INTO staff (id, email, password_hash, name, phone, role, status, is_registered,
			designation, photo_url, join_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		s.ID,
		strings.ToLower(s.Email),
		s.PasswordHash,
		s.Name,
		s.Phone,
		s.Role,
		s.Status,
		s.IsRegistered,
		s.Designation,
		s.PhotoURL,
		s.JoinDate,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("staff", "email", s.Email)
		}
		return fmt.Errorf("insert staff: %w", err)
	}

	return nil
}

// GetByID retrieves a staff member by their ID.
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`
	return r.scanStaff(ctx, query, id)
}

// GetByEmail retrieves a staff member by their email address, matched lowercase.
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE email = $1`
	return r.scanStaff(ctx, query, strings.ToLower(email))
}

// Update modifies an existing staff record.
func (r *StaffRepository) Update(ctx context.Context, s *domain.Staff) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE staff
		SET email = $1, password_hash = $2, name = $3, phone = $4, role = $5, status = $6,
		    is_registered = $7, designation = $8, photo_url = $9, join_date = $10, updated_at = $11
		WHERE id = $12`

	ct, err := r.db.Exec(ctx, query,
		strings.ToLower(s.Email),
		s.PasswordHash,
		s.Name,
		s.Phone,
		s.Role,
		s.Status,
		s.IsRegistered,
		s.Designation,
		s.PhotoURL,
		s.JoinDate,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("staff", "email", s.Email)
		}
		return fmt.Errorf("update staff: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("staff", s.ID)
	}

	return nil
}

// Delete removes a staff record by its ID.
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("staff", id)
	}

	return nil
}

// List returns all staff ordered by creation time, newest first.
func (r *StaffRepository) List(ctx context.Context) ([]domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var staff []domain.Staff
	for rows.Next() {
		s, err := scanStaffRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff row: %w", err)
		}
		staff = append(staff, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staff rows: %w", err)
	}

	if staff == nil {
		staff = []domain.Staff{}
	}

	return staff, nil
}

// Count returns the total number of staff records.
func (r *StaffRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count staff: %w", err)
	}
	return count, nil
}

func (r *StaffRepository) scanStaff(ctx context.Context, query string, args ...any) (*domain.Staff, error) {
	s, err := scanStaffRow(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan staff: %w", err)
	}
	return s, nil
}

func scanStaffRow(row pgx.Row) (*domain.Staff, error) {
	var s domain.Staff
	err := row.Scan(
		&s.ID,
		&s.Email,
		&s.PasswordHash,
		&s.Name,
		&s.Phone,
		&s.Role,
		&s.Status,
		&s.IsRegistered,
		&s.Designation,
		&s.PhotoURL,
		&s.JoinDate,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
