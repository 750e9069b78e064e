package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/mantavyam/jacob-web/pkg/api"
)

// DefaultPageSize matches the server's default listing limit.
const DefaultPageSize = 50

// ListOptions selects one page of the admin listing.
type ListOptions struct {
	Status string
	State  string
	Limit  int
	Offset int
}

// ListRecent fetches one page of complaints, newest first.
func (c *Client) ListRecent(ctx context.Context, opts ListOptions) (*api.ListResponse, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.State != "" {
		query.Set("state", opts.State)
	}

	var resp api.ListResponse
	if err := c.do(ctx, http.MethodGet, "/complaints/recent", query, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Stats(ctx context.Context) (*api.Stats, error) {
	var resp api.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/complaints/stats", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, status string) error {
	path := fmt.Sprintf("/complaints/%d/status", id)
	return c.do(ctx, http.MethodPatch, path, nil, api.UpdateStatusRequest{Status: status}, nil, true)
}

func (c *Client) History(ctx context.Context, id int64) ([]api.StatusChange, error) {
	var resp api.HistoryResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/complaints/%d/history", id), nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// Filter is the dashboard's current selection. Empty strings mean "any".
type Filter struct {
	Status   string
	State    string
	PageSize int
}

// AdminSession is the dashboard state for one signed-in admin: the secret,
// the filter, the rows loaded so far and the last statistics. Refresh and
// ApplyFilters start over from the first page; LoadMore appends.
//
// An AdminSession is not safe for concurrent use.
type AdminSession struct {
	base   *Client
	client *Client

	filter     Filter
	offset     int
	complaints []api.Complaint
	total      int64
	hasMore    bool
	stats      *api.Stats
}

func NewAdminSession(c *Client) *AdminSession {
	return &AdminSession{
		base:   c,
		filter: Filter{PageSize: DefaultPageSize},
	}
}

// Login checks secret by fetching the statistics. A rejected secret is not
// kept.
func (s *AdminSession) Login(ctx context.Context, secret string) error {
	candidate := s.base.withSecret(secret)
	stats, err := candidate.Stats(ctx)
	if err != nil {
		return err
	}
	s.client = candidate
	s.stats = stats
	return nil
}

// Logout forgets the secret and every cached row.
func (s *AdminSession) Logout() {
	s.client = nil
	s.reset()
	s.stats = nil
}

func (s *AdminSession) LoggedIn() bool {
	return s.client != nil
}

// Refresh reloads the statistics and the first page for the current filter.
func (s *AdminSession) Refresh(ctx context.Context) error {
	if err := s.loadStats(ctx); err != nil {
		return err
	}
	s.reset()
	return s.loadPage(ctx)
}

// ApplyFilters replaces the filter and reloads from the first page.
func (s *AdminSession) ApplyFilters(ctx context.Context, f Filter) error {
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	s.filter = f
	s.reset()
	return s.loadPage(ctx)
}

// LoadMore appends the next page. It does nothing when everything matching
// the filter is already loaded.
func (s *AdminSession) LoadMore(ctx context.Context) error {
	if !s.hasMore {
		return nil
	}
	return s.loadPage(ctx)
}

// UpdateStatus changes one complaint's status, patches the cached row in
// place and re-fetches the statistics so the counts follow the edit.
func (s *AdminSession) UpdateStatus(ctx context.Context, id int64, status string) error {
	if s.client == nil {
		return ErrUnauthorized
	}
	if err := s.client.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	for i := range s.complaints {
		if s.complaints[i].ID == id {
			s.complaints[i].Status = status
			break
		}
	}
	return s.loadStats(ctx)
}

// History returns the status changes of one complaint.
func (s *AdminSession) History(ctx context.Context, id int64) ([]api.StatusChange, error) {
	if s.client == nil {
		return nil, ErrUnauthorized
	}
	return s.client.History(ctx, id)
}

// Complaint returns a cached row by id.
func (s *AdminSession) Complaint(id int64) (api.Complaint, bool) {
	for _, c := range s.complaints {
		if c.ID == id {
			return c, true
		}
	}
	return api.Complaint{}, false
}

// Complaints returns a copy of the rows loaded so far.
func (s *AdminSession) Complaints() []api.Complaint {
	out := make([]api.Complaint, len(s.complaints))
	copy(out, s.complaints)
	return out
}

// States lists the distinct states among the loaded rows, sorted, for a
// filter dropdown.
func (s *AdminSession) States() []string {
	seen := make(map[string]bool)
	states := make([]string, 0)
	for _, c := range s.complaints {
		if !seen[c.State] {
			seen[c.State] = true
			states = append(states, c.State)
		}
	}
	sort.Strings(states)
	return states
}

func (s *AdminSession) Stats() *api.Stats { return s.stats }
func (s *AdminSession) Filter() Filter    { return s.filter }
func (s *AdminSession) Total() int64      { return s.total }
func (s *AdminSession) HasMore() bool     { return s.hasMore }

func (s *AdminSession) reset() {
	s.offset = 0
	s.complaints = nil
	s.total = 0
	s.hasMore = false
}

func (s *AdminSession) loadStats(ctx context.Context) error {
	if s.client == nil {
		return ErrUnauthorized
	}
	stats, err := s.client.Stats(ctx)
	if err != nil {
		s.forgetOnUnauthorized(err)
		return err
	}
	s.stats = stats
	return nil
}

func (s *AdminSession) loadPage(ctx context.Context) error {
	if s.client == nil {
		return ErrUnauthorized
	}
	page, err := s.client.ListRecent(ctx, ListOptions{
		Status: s.filter.Status,
		State:  s.filter.State,
		Limit:  s.filter.PageSize,
		Offset: s.offset,
	})
	if err != nil {
		s.forgetOnUnauthorized(err)
		return err
	}

	s.complaints = append(s.complaints, page.Complaints...)
	s.total = page.Pagination.Total
	s.hasMore = page.Pagination.HasMore
	s.offset = page.Pagination.Offset + len(page.Complaints)
	return nil
}

// forgetOnUnauthorized drops a secret the server no longer accepts.
func (s *AdminSession) forgetOnUnauthorized(err error) {
	if errors.Is(err, ErrUnauthorized) {
		s.Logout()
	}
}
