package services

import (
	"context"
	"sync"
	"time"

	"github.com/mantavyam/jacob-web/internal/models"
)

// MockComplaintRepository implements ComplaintRepository for testing
type MockComplaintRepository struct {
	CreateFunc        func(ctx context.Context, c *models.Complaint) (*models.Complaint, error)
	ListFunc          func(ctx context.Context, f models.ListFilter) ([]*models.Complaint, int64, error)
	StatsFunc         func(ctx context.Context, since time.Time) (*models.ComplaintStats, error)
	UpdateStatusFunc  func(ctx context.Context, id int64, status string, changedByIP *string) (int64, error)
	FindByContactFunc func(ctx context.Context, q models.CheckQuery) ([]*models.Complaint, error)
	HistoryFunc       func(ctx context.Context, complaintID int64) ([]*models.StatusChange, error)
}

func (m *MockComplaintRepository) Create(ctx context.Context, c *models.Complaint) (*models.Complaint, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return nil, models.ErrInternalServer
}

func (m *MockComplaintRepository) List(ctx context.Context, f models.ListFilter) ([]*models.Complaint, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return []*models.Complaint{}, 0, nil
}

func (m *MockComplaintRepository) Stats(ctx context.Context, since time.Time) (*models.ComplaintStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, since)
	}
	return &models.ComplaintStats{ByState: []models.StateCount{}}, nil
}

func (m *MockComplaintRepository) UpdateStatus(ctx context.Context, id int64, status string, changedByIP *string) (int64, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, changedByIP)
	}
	return 0, models.ErrNotFound
}

func (m *MockComplaintRepository) FindByContact(ctx context.Context, q models.CheckQuery) ([]*models.Complaint, error) {
	if m.FindByContactFunc != nil {
		return m.FindByContactFunc(ctx, q)
	}
	return []*models.Complaint{}, nil
}

func (m *MockComplaintRepository) History(ctx context.Context, complaintID int64) ([]*models.StatusChange, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, complaintID)
	}
	return []*models.StatusChange{}, nil
}

// MockNotifier implements Notifier for testing and records every confirmation.
type MockNotifier struct {
	SendConfirmationFunc func(ctx context.Context, c Confirmation) NotifyResult
	IsConfigured         bool

	mu   sync.Mutex
	Sent []Confirmation
}

func (m *MockNotifier) SendConfirmation(ctx context.Context, c Confirmation) NotifyResult {
	m.mu.Lock()
	m.Sent = append(m.Sent, c)
	m.mu.Unlock()

	if m.SendConfirmationFunc != nil {
		return m.SendConfirmationFunc(ctx, c)
	}
	return NotifyResult{Sent: true}
}

func (m *MockNotifier) Configured() bool {
	return m.IsConfigured
}
