package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mantavyam/jacob-web/pkg/api"
	"github.com/mantavyam/jacob-web/pkg/validation"
)

// SubmitResult is what a complainant is shown after filing.
type SubmitResult struct {
	ComplaintID int64
	EmailSent   bool
}

// SubmitForm files a complaint. The form is validated locally first with the
// same rules the server applies; a rejected form is returned as
// *validation.Errors without any request being made.
func (c *Client) SubmitForm(ctx context.Context, sub validation.Submission) (*SubmitResult, error) {
	if verrs := validation.ValidateSubmission(sub); verrs != nil {
		return nil, verrs
	}

	var resp api.SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/complaints", nil, validation.Normalize(sub), &resp, false); err != nil {
		return nil, err
	}
	return &SubmitResult{ComplaintID: resp.ComplaintID, EmailSent: resp.EmailSent}, nil
}

// StatusQuery identifies the complaints to look up. Email or Mobile is
// required; RefID narrows the result to one complaint.
type StatusQuery struct {
	RefID  int64
	Email  string
	Mobile string
}

// CheckStatus looks up complaints by contact details. No match is ErrNotFound.
func (c *Client) CheckStatus(ctx context.Context, q StatusQuery) ([]api.CheckResult, error) {
	query := url.Values{}
	if q.RefID > 0 {
		query.Set("refId", strconv.FormatInt(q.RefID, 10))
	}
	if q.Email != "" {
		query.Set("email", q.Email)
	}
	if q.Mobile != "" {
		query.Set("mobile", q.Mobile)
	}

	var resp api.CheckResponse
	if err := c.do(ctx, http.MethodGet, "/complaints/check", query, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Complaints, nil
}
