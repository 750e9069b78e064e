package models

import "time"

// Complaint statuses
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

// Statuses lists every allowed complaint status in lifecycle order.
var Statuses = []string{StatusPending, StatusInProgress, StatusResolved, StatusClosed}

// IsValidStatus reports whether s is one of the four complaint statuses.
func IsValidStatus(s string) bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

type Complaint struct {
	ID             int64
	Username       string
	DateOfBirth    time.Time
	Address        string
	State          string
	District       string
	Pin            string
	Email          string
	Mobile         string
	Gender         string
	Religion       *string // optional
	Caste          *string // optional
	Complaint      string
	Status         string
	SubmissionDate time.Time
}

// ListFilter narrows an admin listing. Empty strings mean "any".
type ListFilter struct {
	Status string
	State  string
	Limit  int
	Offset int
}

// CheckQuery is the public status lookup. At least one of Email or Mobile
// must be set; RefID narrows to a single complaint.
type CheckQuery struct {
	RefID  int64
	Email  string
	Mobile string
}

// StateCount is one row of the per-state breakdown.
type StateCount struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

// ComplaintStats holds aggregate counts for the admin dashboard.
type ComplaintStats struct {
	Total      int64        `json:"total"`
	Pending    int64        `json:"pending"`
	InProgress int64        `json:"inProgress"`
	Resolved   int64        `json:"resolved"`
	Closed     int64        `json:"closed"`
	ByState    []StateCount `json:"byState"`
	Recent24h  int64        `json:"recent24h"`
}
