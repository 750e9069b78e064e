package handlers

import (
	"github.com/mantavyam/jacob-web/internal/models"
	"github.com/mantavyam/jacob-web/pkg/api"
	"github.com/mantavyam/jacob-web/pkg/validation"
)

const summaryLength = 100

func toAPIComplaint(c *models.Complaint) api.Complaint {
	return api.Complaint{
		ID:             c.ID,
		Username:       c.Username,
		DateOfBirth:    c.DateOfBirth.Format(validation.DateLayout),
		Address:        c.Address,
		State:          c.State,
		District:       c.District,
		Pin:            c.Pin,
		Email:          c.Email,
		Mobile:         c.Mobile,
		Gender:         c.Gender,
		Religion:       c.Religion,
		Caste:          c.Caste,
		Complaint:      c.Complaint,
		Status:         c.Status,
		SubmissionDate: c.SubmissionDate,
	}
}

func toAPIComplaints(cs []*models.Complaint) []api.Complaint {
	out := make([]api.Complaint, 0, len(cs))
	for _, c := range cs {
		out = append(out, toAPIComplaint(c))
	}
	return out
}

func toCheckResult(c *models.Complaint) api.CheckResult {
	return api.CheckResult{
		ID:             c.ID,
		Username:       c.Username,
		State:          c.State,
		Status:         c.Status,
		SubmissionDate: c.SubmissionDate,
		Summary:        summarize(c.Complaint, summaryLength),
	}
}

// summarize cuts text to at most n runes, marking the cut with an ellipsis.
func summarize(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "…"
}

func toAPIStats(s *models.ComplaintStats) api.Stats {
	byState := make([]api.StateCount, 0, len(s.ByState))
	for _, sc := range s.ByState {
		byState = append(byState, api.StateCount{State: sc.State, Count: sc.Count})
	}
	return api.Stats{
		Total:      s.Total,
		Pending:    s.Pending,
		InProgress: s.InProgress,
		Resolved:   s.Resolved,
		Closed:     s.Closed,
		ByState:    byState,
		Recent24h:  s.Recent24h,
	}
}

func toAPIHistory(hs []*models.StatusChange) []api.StatusChange {
	out := make([]api.StatusChange, 0, len(hs))
	for _, h := range hs {
		out = append(out, api.StatusChange{
			ID:          h.ID.String(),
			OldStatus:   h.OldStatus,
			NewStatus:   h.NewStatus,
			ChangedByIP: h.ChangedByIP,
			ChangedAt:   h.ChangedAt,
		})
	}
	return out
}
