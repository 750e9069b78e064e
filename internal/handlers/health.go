package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/mantavyam/jacob-web/pkg/api"
	pkghttp "github.com/mantavyam/jacob-web/pkg/http"
)

// HealthChecker pings the database.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db              HealthChecker
	emailConfigured bool
	now             func() time.Time
}

func NewHealthHandler(db HealthChecker, emailConfigured bool) *HealthHandler {
	return &HealthHandler{db: db, emailConfigured: emailConfigured, now: time.Now}
}

// Health handles GET /api/health. An unreachable database degrades the
// answer to 503 so load balancers stop routing here.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{
		Status:    "OK",
		Timestamp: h.now().UTC(),
		Database:  "Connected",
		Email:     "Not Configured",
	}
	if h.emailConfigured {
		resp.Email = "Configured"
	}

	status := http.StatusOK
	if err := h.db.HealthCheck(r.Context()); err != nil {
		resp.Status = "Degraded"
		resp.Database = "Disconnected"
		status = http.StatusServiceUnavailable
	}

	pkghttp.WriteJSON(w, status, resp)
}

// NotFound answers every unmatched API method and path pair.
func NotFound(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteNotFound(w, "API endpoint not found")
}
