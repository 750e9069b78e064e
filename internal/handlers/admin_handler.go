package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mantavyam/jacob-web/internal/models"
	"github.com/mantavyam/jacob-web/internal/services"
	"github.com/mantavyam/jacob-web/pkg/api"
	pkghttp "github.com/mantavyam/jacob-web/pkg/http"
	"github.com/mantavyam/jacob-web/pkg/logger"
)

// AdminHandler serves the dashboard endpoints. Every route is mounted behind
// auth.RequireAdminSecret.
type AdminHandler struct {
	service  ComplaintServiceInterface
	audit    *logger.AuditLogger
	ipConfig *pkghttp.IPConfig
}

func NewAdminHandler(service ComplaintServiceInterface, audit *logger.AuditLogger, ipConfig *pkghttp.IPConfig) *AdminHandler {
	return &AdminHandler{service: service, audit: audit, ipConfig: ipConfig}
}

// Recent handles GET /api/complaints/recent?limit=&offset=&status=&state=
func (h *AdminHandler) Recent(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, ok := intParam(query.Get("limit"), services.DefaultListLimit)
	if !ok || limit < 1 || limit > services.MaxListLimit {
		pkghttp.WriteBadRequest(w, "limit must be between 1 and 100")
		return
	}
	offset, ok := intParam(query.Get("offset"), 0)
	if !ok || offset < 0 {
		pkghttp.WriteBadRequest(w, "offset must be a non-negative integer")
		return
	}

	filter := models.ListFilter{
		Status: strings.TrimSpace(query.Get("status")),
		State:  strings.TrimSpace(query.Get("state")),
		Limit:  limit,
		Offset: offset,
	}
	if filter.Status != "" && !models.IsValidStatus(filter.Status) {
		pkghttp.WriteBadRequest(w, "Invalid status value")
		return
	}

	complaints, total, err := h.service.ListRecent(r.Context(), filter)
	if err != nil {
		if errors.Is(err, models.ErrInvalidArgument) {
			pkghttp.WriteBadRequest(w, "Invalid query parameters")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to fetch complaints")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, api.ListResponse{
		Success:    true,
		Complaints: toAPIComplaints(complaints),
		Pagination: api.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+len(complaints)) < total,
		},
	})
}

// Stats handles GET /api/complaints/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch statistics")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, api.StatsResponse{Success: true, Stats: toAPIStats(stats)})
}

// UpdateStatus handles PATCH /api/complaints/{id}/status
// The status value is checked before the id.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if !models.IsValidStatus(req.Status) {
		pkghttp.WriteBadRequest(w, "Invalid status value")
		return
	}

	id, ok := complaintID(r)
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid complaint ID")
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	if err := h.service.UpdateStatus(r.Context(), id, req.Status, ip); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Complaint not found")
		case errors.Is(err, models.ErrInvalidArgument):
			pkghttp.WriteBadRequest(w, "Invalid status value")
		default:
			pkghttp.WriteInternalError(w, "Failed to update status")
		}
		return
	}

	if h.audit != nil {
		h.audit.LogStatusChange(id, req.Status, ip)
	}

	pkghttp.WriteJSON(w, http.StatusOK, api.MessageResponse{Success: true, Message: "Status updated successfully"})
}

// History handles GET /api/complaints/{id}/history
func (h *AdminHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := complaintID(r)
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid complaint ID")
		return
	}

	history, err := h.service.History(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Complaint not found")
		case errors.Is(err, models.ErrInvalidArgument):
			pkghttp.WriteBadRequest(w, "Invalid complaint ID")
		default:
			pkghttp.WriteInternalError(w, "Failed to fetch status history")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, api.HistoryResponse{
		Success:     true,
		ComplaintID: id,
		History:     toAPIHistory(history),
	})
}

func complaintID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// intParam parses an optional integer query value.
func intParam(raw string, def int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
