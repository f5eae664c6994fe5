package domain

import (
	"time"
)

// Staff lifecycle status values.
const (
	StaffStatusInvited     = "invited"
	StaffStatusPending     = "pending"
	StaffStatusActive      = "active"
	StaffStatusDeactivated = "deactivated"
)

// Staff represents a worker account created through an admin invite.
type Staff struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone,omitempty"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	IsRegistered bool       `json:"is_registered"`
	Designation  string     `json:"designation,omitempty"`
	PhotoURL     string     `json:"photo_url,omitempty"`
	JoinDate     *time.Time `json:"join_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsLoginable reports whether the staff account may authenticate.
// Invited and deactivated accounts cannot log in.
func (s *Staff) IsLoginable() bool {
	return s.IsRegistered && s.Status == StaffStatusActive
}

// ValidStaffStatus checks whether the given string is a valid lifecycle status.
func ValidStaffStatus(status string) bool {
	switch status {
	case StaffStatusInvited, StaffStatusPending, StaffStatusActive, StaffStatusDeactivated:
		return true
	}
	return false
}
