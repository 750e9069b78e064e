package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mantavyam/jacob-web/internal/models"
	"github.com/mantavyam/jacob-web/internal/services"
	"github.com/mantavyam/jacob-web/pkg/api"
	pkghttp "github.com/mantavyam/jacob-web/pkg/http"
	"github.com/mantavyam/jacob-web/pkg/validation"
)

// maxBodyBytes bounds request bodies; a complaint form is a few kilobytes.
const maxBodyBytes = 64 << 10

// ComplaintServiceInterface defines the complaint service contract.
type ComplaintServiceInterface interface {
	Submit(ctx context.Context, sub validation.Submission) (*services.SubmitResult, error)
	ListRecent(ctx context.Context, f models.ListFilter) ([]*models.Complaint, int64, error)
	Stats(ctx context.Context) (*models.ComplaintStats, error)
	UpdateStatus(ctx context.Context, id int64, status, changedByIP string) error
	Check(ctx context.Context, q models.CheckQuery) ([]*models.Complaint, error)
	History(ctx context.Context, id int64) ([]*models.StatusChange, error)
}

// ComplaintHandler serves the public complaint endpoints.
type ComplaintHandler struct {
	service ComplaintServiceInterface
}

func NewComplaintHandler(service ComplaintServiceInterface) *ComplaintHandler {
	return &ComplaintHandler{service: service}
}

// Submit handles POST /api/complaints
func (h *ComplaintHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub validation.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		var verrs *validation.Errors
		if errors.As(err, &verrs) {
			pkghttp.WriteValidationErrors(w, verrs)
			return
		}
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Submit(r.Context(), sub)
	if err != nil {
		var verrs *validation.Errors
		switch {
		case errors.As(err, &verrs):
			pkghttp.WriteValidationErrors(w, verrs)
		case errors.Is(err, models.ErrConstraint):
			pkghttp.WriteBadRequest(w, "Complaint data was rejected. Please check the form and try again.")
		default:
			pkghttp.WriteInternalError(w, "Failed to submit complaint. Please try again.")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, api.SubmitResponse{
		Success:     true,
		Message:     "Complaint submitted successfully",
		ComplaintID: result.Complaint.ID,
		EmailSent:   result.EmailSent,
	})
}

// Check handles GET /api/complaints/check?refId=&email=&mobile=
func (h *ComplaintHandler) Check(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := models.CheckQuery{
		Email:  query.Get("email"),
		Mobile: query.Get("mobile"),
	}
	if raw := strings.TrimSpace(query.Get("refId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			pkghttp.WriteBadRequest(w, "Invalid reference ID")
			return
		}
		q.RefID = id
	}

	complaints, err := h.service.Check(r.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidArgument):
			pkghttp.WriteBadRequest(w, "Email or mobile number is required")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "No complaints found")
		default:
			pkghttp.WriteInternalError(w, "Failed to look up complaints")
		}
		return
	}

	results := make([]api.CheckResult, 0, len(complaints))
	for _, c := range complaints {
		results = append(results, toCheckResult(c))
	}
	pkghttp.WriteJSON(w, http.StatusOK, api.CheckResponse{Success: true, Complaints: results})
}

// decodeJSON reads a single JSON object from the body, rejecting oversized
// bodies and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
