package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mantavyam/jacob-web/internal/models"
	"github.com/mantavyam/jacob-web/internal/services"
	pkghttp "github.com/mantavyam/jacob-web/pkg/http"
	"github.com/mantavyam/jacob-web/pkg/validation"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks the status and the {success:false, message} envelope.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to decode error response")
	assert.False(t, resp.Success)
	assert.Equal(t, expectedMessage, resp.Message, "Error message mismatch")
}

// WithChiRouteContext adds chi URL parameters to request context for testing
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// MockComplaintService implements ComplaintServiceInterface for testing
type MockComplaintService struct {
	SubmitFunc       func(ctx context.Context, sub validation.Submission) (*services.SubmitResult, error)
	ListRecentFunc   func(ctx context.Context, f models.ListFilter) ([]*models.Complaint, int64, error)
	StatsFunc        func(ctx context.Context) (*models.ComplaintStats, error)
	UpdateStatusFunc func(ctx context.Context, id int64, status, changedByIP string) error
	CheckFunc        func(ctx context.Context, q models.CheckQuery) ([]*models.Complaint, error)
	HistoryFunc      func(ctx context.Context, id int64) ([]*models.StatusChange, error)
}

func (m *MockComplaintService) Submit(ctx context.Context, sub validation.Submission) (*services.SubmitResult, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, sub)
	}
	return nil, models.ErrInternalServer
}

func (m *MockComplaintService) ListRecent(ctx context.Context, f models.ListFilter) ([]*models.Complaint, int64, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, f)
	}
	return []*models.Complaint{}, 0, nil
}

func (m *MockComplaintService) Stats(ctx context.Context) (*models.ComplaintStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.ComplaintStats{ByState: []models.StateCount{}}, nil
}

func (m *MockComplaintService) UpdateStatus(ctx context.Context, id int64, status, changedByIP string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, changedByIP)
	}
	return nil
}

func (m *MockComplaintService) Check(ctx context.Context, q models.CheckQuery) ([]*models.Complaint, error) {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, q)
	}
	return nil, models.ErrNotFound
}

func (m *MockComplaintService) History(ctx context.Context, id int64) ([]*models.StatusChange, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, id)
	}
	return []*models.StatusChange{}, nil
}

// MockHealthChecker implements HealthChecker for testing
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}
