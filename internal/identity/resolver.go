package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/internal/repository"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

// Resolver maps principal ids and external identities to exactly one
// Principal. The search order is fixed: worker accounts are checked before
// self-registered accounts.
type Resolver struct {
	staff repository.StaffRepository
	users repository.UserRepository
}

// NewResolver creates a resolver over the two principal stores.
func NewResolver(staff repository.StaffRepository, users repository.UserRepository) *Resolver {
	return &Resolver{staff: staff, users: users}
}

// Resolve returns the principal for the given id, checking the staff store
// first and falling back to the user store.
func (r *Resolver) Resolve(ctx context.Context, id string) (*domain.Principal, error) {
	s, err := r.staff.GetByID(ctx, id)
	if err == nil {
		return domain.PrincipalFromStaff(s), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("resolve staff: %w", err)
	}

	u, err := r.users.GetByID(ctx, id)
	if err == nil {
		return domain.PrincipalFromUser(u), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	return nil, apperrors.NotFound("account", id)
}

// ResolveGoogle implements the Google login path. Staff never link Google
// ids, so a staff record owning the email wins outright. Otherwise the user
// is found by Google id, then by email (linking the Google id), and finally
// a new role-user account is created. Creation is idempotent under
// concurrent duplicate logins: the unique constraints on email and google_id
// turn the race into an AlreadyExists, after which the winner is re-looked
// up and returned.
func (r *Resolver) ResolveGoogle(ctx context.Context, googleID, email, name string) (*domain.Principal, error) {
	s, err := r.staff.GetByEmail(ctx, email)
	if err == nil {
		return domain.PrincipalFromStaff(s), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("resolve staff by email: %w", err)
	}

	u, err := r.users.GetByGoogleID(ctx, googleID)
	if err == nil {
		return domain.PrincipalFromUser(u), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("resolve user by google id: %w", err)
	}

	u, err = r.users.GetByEmail(ctx, email)
	if err == nil {
		u.GoogleID = googleID
		if err := r.users.Update(ctx, u); err != nil {
			return nil, fmt.Errorf("link google id: %w", err)
		}
		return domain.PrincipalFromUser(u), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("resolve user by email: %w", err)
	}

	now := time.Now().UTC()
	created := &domain.User{
		ID:                 uuid.New().String(),
		Email:              email,
		Name:               name,
		Role:               domain.RoleUser,
		GoogleID:           googleID,
		IsActive:           true,
		VerificationStatus: domain.VerificationVerified,
		IsVerified:         true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = r.users.Create(ctx, created)
	if err == nil {
		return domain.PrincipalFromUser(created), nil
	}
	if !errors.Is(err, apperrors.ErrAlreadyExists) {
		return nil, fmt.Errorf("create google user: %w", err)
	}

	// Lost the creation race; return whichever account won.
	u, err = r.users.GetByGoogleID(ctx, googleID)
	if err == nil {
		return domain.PrincipalFromUser(u), nil
	}
	u, err = r.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("re-resolve after conflict: %w", err)
	}
	return domain.PrincipalFromUser(u), nil
}
