package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/pkg/database"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

// ResignationRepository implements repository.ResignationRepository using PostgreSQL.
type ResignationRepository struct {
	db database.DBTX
}

// NewResignationRepository creates a new PostgreSQL-backed resignation repository.
func NewResignationRepository(db database.DBTX) *ResignationRepository {
	return &ResignationRepository{db: db}
}

// Create inserts a new resignation request.
func (r *ResignationRepository) Create(ctx context.Context, res *domain.Resignation) error {
	query := `
		INSERT INTO resignations (id, staff_id, reason, status, decided_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		res.ID,
		res.StaffID,
		res.Reason,
		res.Status,
		res.DecidedBy,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resignation: %w", err)
	}

	return nil
}

// GetByID retrieves a resignation by its ID.
func (r *ResignationRepository) GetByID(ctx context.Context, id string) (*domain.Resignation, error) {
	query := `
		SELECT id, staff_id, reason, status, decided_by, created_at, updated_at
		FROM resignations
		WHERE id = $1`

	var res domain.Resignation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&res.ID,
		&res.StaffID,
		&res.Reason,
		&res.Status,
		&res.DecidedBy,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("resignation", id)
		}
		return nil, fmt.Errorf("scan resignation: %w", err)
	}

	return &res, nil
}

// List returns all resignations, newest first.
func (r *ResignationRepository) List(ctx context.Context) ([]domain.Resignation, error) {
	query := `
		SELECT id, staff_id, reason, status, decided_by, created_at, updated_at
		FROM resignations
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list resignations: %w", err)
	}
	defer rows.Close()

	var resignations []domain.Resignation
	for rows.Next() {
		var res domain.Resignation
		if err := rows.Scan(
			&res.ID,
			&res.StaffID,
			&res.Reason,
			&res.Status,
			&res.DecidedBy,
			&res.CreatedAt,
			&res.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan resignation row: %w", err)
		}
		resignations = append(resignations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resignation rows: %w", err)
	}

	if resignations == nil {
		resignations = []domain.Resignation{}
	}

	return resignations, nil
}

// Update modifies an existing resignation.
func (r *ResignationRepository) Update(ctx context.Context, res *domain.Resignation) error {
	res.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE resignations
		SET reason = $1, status = $2, decided_by = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.db.Exec(ctx, query,
		res.Reason,
		res.Status,
		res.DecidedBy,
		res.UpdatedAt,
		res.ID,
	)
	if err != nil {
		return fmt.Errorf("update resignation: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("resignation", res.ID)
	}

	return nil
}

// --- Leave Repository ---

// LeaveRepository implements repository.LeaveRepository using PostgreSQL.
type LeaveRepository struct {
	db database.DBTX
}

// NewLeaveRepository creates a new PostgreSQL-backed leave repository.
func NewLeaveRepository(db database.DBTX) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a new leave request.
func (r *LeaveRepository) Create(ctx context.Context, l *domain.Leave) error {
	query := `
		INSERT INTO leaves (id, staff_id, from_date, to_date, reason, status, decided_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		l.ID,
		l.StaffID,
		l.FromDate,
		l.ToDate,
		l.Reason,
		l.Status,
		l.DecidedBy,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert leave: %w", err)
	}

	return nil
}

// GetByID retrieves a leave request by its ID.
func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*domain.Leave, error) {
	query := `
		SELECT id, staff_id, from_date, to_date, reason, status, decided_by, created_at, updated_at
		FROM leaves
		WHERE id = $1`

	var l domain.Leave
	err := r.db.QueryRow(ctx, query, id).Scan(
		&l.ID,
		&l.StaffID,
		&l.FromDate,
		&l.ToDate,
		&l.Reason,
		&l.Status,
		&l.DecidedBy,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("leave", id)
		}
		return nil, fmt.Errorf("scan leave: %w", err)
	}

	return &l, nil
}

// ListByStaffID returns all leave requests for the given staff member, newest first.
func (r *LeaveRepository) ListByStaffID(ctx context.Context, staffID string) ([]domain.Leave, error) {
	query := `
		SELECT id, staff_id, from_date, to_date, reason, status, decided_by, created_at, updated_at
		FROM leaves
		WHERE staff_id = $1
		ORDER BY created_at DESC`

	return r.queryLeaves(ctx, query, staffID)
}

// List returns all leave requests, newest first.
func (r *LeaveRepository) List(ctx context.Context) ([]domain.Leave, error) {
	query := `
		SELECT id, staff_id, from_date, to_date, reason, status, decided_by, created_at, updated_at
		FROM leaves
		ORDER BY created_at DESC`

	return r.queryLeaves(ctx, query)
}

// Update modifies an existing leave request.
func (r *LeaveRepository) Update(ctx context.Context, l *domain.Leave) error {
	l.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE leaves
		SET from_date = $1, to_date = $2, reason = $3, status = $4, decided_by = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.db.Exec(ctx, query,
		l.FromDate,
		l.ToDate,
		l.Reason,
		l.Status,
		l.DecidedBy,
		l.UpdatedAt,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("update leave: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("leave", l.ID)
	}

	return nil
}

func (r *LeaveRepository) queryLeaves(ctx context.Context, query string, args ...any) ([]domain.Leave, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	defer rows.Close()

	var leaves []domain.Leave
	for rows.Next() {
		var l domain.Leave
		if err := rows.Scan(
			&l.ID,
			&l.StaffID,
			&l.FromDate,
			&l.ToDate,
			&l.Reason,
			&l.Status,
			&l.DecidedBy,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan leave row: %w", err)
		}
		leaves = append(leaves, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leave rows: %w", err)
	}

	if leaves == nil {
		leaves = []domain.Leave{}
	}

	return leaves, nil
}
