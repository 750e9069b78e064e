package models

import (
	"time"

	"github.com/google/uuid"
)

// StatusChange records a single status transition of a complaint.
type StatusChange struct {
	ID          uuid.UUID
	ComplaintID int64
	OldStatus   string
	NewStatus   string
	ChangedByIP *string
	ChangedAt   time.Time
}
