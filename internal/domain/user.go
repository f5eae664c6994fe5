package domain

import (
	"time"
)

// Verification status values for self-registered accounts.
const (
	VerificationPending     = "pending"
	VerificationVerified    = "verified"
	VerificationNotVerified = "not_verified"
)

// User represents a self-registered account.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	Name               string     `json:"name"`
	Phone              string     `json:"phone,omitempty"`
	Role               string     `json:"role"`
	GoogleID           string     `json:"-"`
	IsActive           bool       `json:"is_active"`
	IsBlocked          bool       `json:"is_blocked"`
	VerificationStatus string     `json:"verification_status"`
	IsVerified         bool       `json:"is_verified"`
	PhotoURL           string     `json:"photo_url,omitempty"`
	ResetTokenHash     string     `json:"-"`
	ResetTokenExpiry   *time.Time `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CanLogin reports whether the account may authenticate with a password.
func (u *User) CanLogin() bool {
	return u.PasswordHash != "" && !u.IsBlocked
}

// HasLiveResetTicket reports whether a reset ticket exists and has not expired.
func (u *User) HasLiveResetTicket(now time.Time) bool {
	return u.ResetTokenHash != "" && u.ResetTokenExpiry != nil && now.Before(*u.ResetTokenExpiry)
}
