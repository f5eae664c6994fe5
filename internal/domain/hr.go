package domain

import "time"

// Decision values for resignations and leave requests.
const (
	DecisionPending  = "pending"
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// Resignation is a staff member's request to leave. Approving it deactivates
// the staff account.
type Resignation struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staff_id"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	DecidedBy string    `json:"decided_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Leave is a staff leave request covering an inclusive date range.
type Leave struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staff_id"`
	FromDate  time.Time `json:"from_date"`
	ToDate    time.Time `json:"to_date"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	DecidedBy string    `json:"decided_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Days returns the number of calendar days the leave covers, inclusive.
func (l *Leave) Days() int {
	if l.ToDate.Before(l.FromDate) {
		return 0
	}
	return int(l.ToDate.Sub(l.FromDate).Hours()/24) + 1
}

// ValidDecision checks whether the given string is a terminal decision value.
func ValidDecision(status string) bool {
	return status == DecisionApproved || status == DecisionRejected
}

// LeaveStats aggregates a staff member's leave history.
type LeaveStats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
	DaysUsed int `json:"days_used"`
}
