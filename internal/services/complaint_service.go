package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mantavyam/jacob-web/internal/models"
	"github.com/mantavyam/jacob-web/pkg/logger"
	"github.com/mantavyam/jacob-web/pkg/validation"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
	recentWindow     = 24 * time.Hour
)

// ComplaintRepository defines the interface for complaint data access
type ComplaintRepository interface {
	Create(ctx context.Context, c *models.Complaint) (*models.Complaint, error)
	List(ctx context.Context, f models.ListFilter) ([]*models.Complaint, int64, error)
	Stats(ctx context.Context, since time.Time) (*models.ComplaintStats, error)
	UpdateStatus(ctx context.Context, id int64, status string, changedByIP *string) (int64, error)
	FindByContact(ctx context.Context, q models.CheckQuery) ([]*models.Complaint, error)
	History(ctx context.Context, complaintID int64) ([]*models.StatusChange, error)
}

// SubmitResult is the outcome of an accepted complaint.
type SubmitResult struct {
	Complaint *models.Complaint
	EmailSent bool
}

// ComplaintService handles complaint intake and review
type ComplaintService struct {
	repo     ComplaintRepository
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewComplaintService(repo ComplaintRepository, notifier Notifier, logger *slog.Logger) *ComplaintService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ComplaintService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// EmailConfigured reports whether confirmations can be sent at all.
func (s *ComplaintService) EmailConfigured() bool {
	return s.notifier.Configured()
}

// Submit validates and stores a complaint, then sends the confirmation email.
// A rejected form is returned as *validation.Errors. The email outcome never
// turns a stored complaint into a failure.
func (s *ComplaintService) Submit(ctx context.Context, sub validation.Submission) (*SubmitResult, error) {
	if verrs := validation.ValidateSubmission(sub); verrs != nil {
		return nil, verrs
	}
	sub = validation.Normalize(sub)

	dob, err := validation.ParseDate(sub.Date)
	if err != nil {
		// already checked by ValidateSubmission
		return nil, models.ErrInvalidArgument
	}

	created, err := s.repo.Create(ctx, &models.Complaint{
		Username:    sub.Username,
		DateOfBirth: dob,
		Address:     sub.Address,
		State:       sub.State,
		District:    sub.District,
		Pin:         sub.Pin,
		Email:       sub.Email,
		Mobile:      sub.Mob,
		Gender:      sub.Gender,
		Religion:    optional(sub.Religion),
		Caste:       optional(sub.Caste),
		Complaint:   sub.Complaint,
	})
	if err != nil {
		if errors.Is(err, models.ErrConstraint) {
			s.logger.Warn("complaint rejected by database constraint", slog.Any("error", err))
			return nil, models.ErrConstraint
		}
		s.logger.Error("failed to store complaint",
			slog.String("email", logger.SanitizedEmail(sub.Email)),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("complaint stored",
		slog.Int64("complaint_id", created.ID),
		slog.String("state", created.State))

	result := s.notifier.SendConfirmation(ctx, Confirmation{
		ComplaintID: created.ID,
		Username:    created.Username,
		Email:       created.Email,
		SubmittedAt: created.SubmissionDate,
	})
	if !result.Sent {
		s.logger.Info("confirmation email not sent",
			slog.Int64("complaint_id", created.ID),
			slog.String("reason", result.Reason))
	}

	return &SubmitResult{Complaint: created, EmailSent: result.Sent}, nil
}

// ListRecent returns one page of complaints, newest first, plus the total
// number matching the filter.
func (s *ComplaintService) ListRecent(ctx context.Context, f models.ListFilter) ([]*models.Complaint, int64, error) {
	if f.Limit < 1 || f.Limit > MaxListLimit || f.Offset < 0 {
		return nil, 0, fmt.Errorf("limit must be 1..%d and offset >= 0: %w", MaxListLimit, models.ErrInvalidArgument)
	}
	if f.Status != "" && !models.IsValidStatus(f.Status) {
		return nil, 0, fmt.Errorf("unknown status %q: %w", f.Status, models.ErrInvalidArgument)
	}

	complaints, total, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to list complaints",
			slog.String("status", f.Status),
			slog.String("state", f.State),
			slog.Int("limit", f.Limit),
			slog.Int("offset", f.Offset),
			slog.Any("error", err))
		return nil, 0, models.ErrInternalServer
	}

	return complaints, total, nil
}

// Stats returns the dashboard aggregates. Recent24h counts complaints
// submitted within the last 24 hours.
func (s *ComplaintService) Stats(ctx context.Context) (*models.ComplaintStats, error) {
	stats, err := s.repo.Stats(ctx, s.now().Add(-recentWindow))
	if err != nil {
		s.logger.Error("failed to compute complaint stats", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return stats, nil
}

// UpdateStatus moves a complaint to a new status. The status is checked
// before the id so a bad value never reaches the store.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id int64, status, changedByIP string) error {
	if !models.IsValidStatus(status) {
		return fmt.Errorf("unknown status %q: %w", status, models.ErrInvalidArgument)
	}
	if id <= 0 {
		return fmt.Errorf("complaint id %d: %w", id, models.ErrInvalidArgument)
	}

	n, err := s.repo.UpdateStatus(ctx, id, status, optional(changedByIP))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("status update for unknown complaint", slog.Int64("complaint_id", id))
			return models.ErrNotFound
		}
		s.logger.Error("failed to update complaint status",
			slog.Int64("complaint_id", id),
			slog.String("status", status),
			slog.Any("error", err))
		return models.ErrInternalServer
	}
	if n == 0 {
		return models.ErrNotFound
	}

	s.logger.Info("complaint status updated",
		slog.Int64("complaint_id", id),
		slog.String("status", status))
	return nil
}

// Check finds the complaints filed with an email or mobile number. RefID, when
// set, narrows the lookup to one complaint. No match is ErrNotFound.
func (s *ComplaintService) Check(ctx context.Context, q models.CheckQuery) ([]*models.Complaint, error) {
	q.Email = strings.ToLower(strings.TrimSpace(q.Email))
	q.Mobile = strings.TrimSpace(q.Mobile)

	if q.Email == "" && q.Mobile == "" {
		return nil, fmt.Errorf("email or mobile is required: %w", models.ErrInvalidArgument)
	}
	if q.RefID < 0 {
		return nil, fmt.Errorf("reference id %d: %w", q.RefID, models.ErrInvalidArgument)
	}

	complaints, err := s.repo.FindByContact(ctx, q)
	if err != nil {
		s.logger.Error("failed to look up complaints", append(contactAttrs(q), slog.Any("error", err))...)
		return nil, models.ErrInternalServer
	}
	if len(complaints) == 0 {
		s.logger.Debug("status check matched nothing", contactAttrs(q)...)
		return nil, models.ErrNotFound
	}
	return complaints, nil
}

// History returns the status changes of one complaint, oldest first.
func (s *ComplaintService) History(ctx context.Context, id int64) ([]*models.StatusChange, error) {
	if id <= 0 {
		return nil, fmt.Errorf("complaint id %d: %w", id, models.ErrInvalidArgument)
	}

	history, err := s.repo.History(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load status history", slog.Int64("complaint_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return history, nil
}

// contactAttrs masks the lookup keys of a status check for logging.
func contactAttrs(q models.CheckQuery) []any {
	attrs := []any{slog.Int64("ref_id", q.RefID)}
	if q.Email != "" {
		attrs = append(attrs, slog.String("email", logger.SanitizedEmail(q.Email)))
	}
	if q.Mobile != "" {
		attrs = append(attrs, slog.String("mobile", logger.SanitizedMobile(q.Mobile)))
	}
	return attrs
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
