// Package api defines the JSON bodies exchanged between the complaint
// service and its clients.
package api

import (
	"time"

	"github.com/mantavyam/jacob-web/pkg/validation"
)

// Complaint statuses as they appear on the wire.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

// AdminSecretHeader carries the shared admin secret.
const AdminSecretHeader = "X-Admin-Password"

// Complaint is a stored complaint as returned to the admin dashboard.
type Complaint struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	DateOfBirth    string    `json:"date_of_birth"` // YYYY-MM-DD
	Address        string    `json:"address"`
	State          string    `json:"state"`
	District       string    `json:"district"`
	Pin            string    `json:"pin"`
	Email          string    `json:"email"`
	Mobile         string    `json:"mobile"`
	Gender         string    `json:"gender"`
	Religion       *string   `json:"religion"`
	Caste          *string   `json:"caste"`
	Complaint      string    `json:"complaint"`
	Status         string    `json:"status"`
	SubmissionDate time.Time `json:"submission_date"`
}

type SubmitResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ComplaintID int64  `json:"complaintId"`
	EmailSent   bool   `json:"emailSent"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

type ListResponse struct {
	Success    bool        `json:"success"`
	Complaints []Complaint `json:"complaints"`
	Pagination Pagination  `json:"pagination"`
}

type StateCount struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

type Stats struct {
	Total      int64        `json:"total"`
	Pending    int64        `json:"pending"`
	InProgress int64        `json:"inProgress"`
	Resolved   int64        `json:"resolved"`
	Closed     int64        `json:"closed"`
	ByState    []StateCount `json:"byState"`
	Recent24h  int64        `json:"recent24h"`
}

type StatsResponse struct {
	Success bool  `json:"success"`
	Stats   Stats `json:"stats"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CheckResult is the limited view a complainant gets of their own complaint.
type CheckResult struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	State          string    `json:"state"`
	Status         string    `json:"status"`
	SubmissionDate time.Time `json:"submission_date"`
	Summary        string    `json:"summary"`
}

type CheckResponse struct {
	Success    bool          `json:"success"`
	Complaints []CheckResult `json:"complaints"`
}

type StatusChange struct {
	ID          string    `json:"id"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	ChangedByIP *string   `json:"changed_by_ip,omitempty"`
	ChangedAt   time.Time `json:"changed_at"`
}

type HistoryResponse struct {
	Success     bool           `json:"success"`
	ComplaintID int64          `json:"complaintId"`
	History     []StatusChange `json:"history"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Email     string    `json:"email"`
}

// ErrorBody decodes any failed response: plain errors carry Message, rejected
// forms carry Errors.
type ErrorBody struct {
	Success bool                    `json:"success"`
	Error   string                  `json:"error,omitempty"`
	Message string                  `json:"message,omitempty"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}
