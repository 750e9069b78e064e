package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mantavyam/jacob-web/pkg/api"
	pkgauth "github.com/mantavyam/jacob-web/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "cli-secret-123"

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	submitted := time.Date(2025, 1, 10, 3, 30, 0, 0, time.UTC)
	mux := http.NewServeMux()
	guard := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(api.AdminSecretHeader) != testSecret {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(api.ErrorBody{Message: "Unauthorized access"})
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("/api/complaints/stats", guard(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.StatsResponse{Success: true, Stats: api.Stats{
			Total: 2, Pending: 1, Resolved: 1,
			ByState: []api.StateCount{{State: "Karnataka", Count: 2}},
		}})
	}))
	mux.HandleFunc("/api/complaints/recent", guard(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.ListResponse{
			Success: true,
			Complaints: []api.Complaint{{
				ID: 1, Username: "Asha Devi", Email: "asha@example.com", Mobile: "9876543210",
				State: "Karnataka", District: "Bengaluru", Status: api.StatusPending,
				Complaint: strings.Repeat("long text ", 20), SubmissionDate: submitted,
			}},
			Pagination: api.Pagination{Total: 1, Limit: 50},
		})
	}))
	mux.HandleFunc("/api/complaints/1/status", guard(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.MessageResponse{Success: true})
	}))
	mux.HandleFunc("/api/complaints/check", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(api.ErrorBody{Message: "No complaints found"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, &out)
	return out.String(), err
}

func TestRun_Stats(t *testing.T) {
	srv := newTestAPI(t)

	out, err := runCLI(t, "-url", srv.URL, "-secret", testSecret, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "Karnataka")
}

func TestRun_RejectedSecret(t *testing.T) {
	srv := newTestAPI(t)

	_, err := runCLI(t, "-url", srv.URL, "-secret", "nope", "stats")
	assert.EqualError(t, err, "admin secret rejected")
}

func TestRun_List(t *testing.T) {
	srv := newTestAPI(t)

	out, err := runCLI(t, "-url", srv.URL, "-secret", testSecret, "list", "-limit", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "10 Jan 2025, 09:00 AM")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "Showing 1 of 1 complaints")
}

func TestRun_SetStatus(t *testing.T) {
	srv := newTestAPI(t)

	out, err := runCLI(t, "-url", srv.URL, "-secret", testSecret, "set-status", "1", api.StatusResolved)
	require.NoError(t, err)
	assert.Contains(t, out, "Complaint #1 is now Resolved")

	_, err = runCLI(t, "-url", srv.URL, "-secret", testSecret, "set-status", "abc", api.StatusResolved)
	assert.ErrorContains(t, err, "invalid complaint id")
}

func TestRun_CheckNotFound(t *testing.T) {
	srv := newTestAPI(t)

	out, err := runCLI(t, "-url", srv.URL, "check", "-email", "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, "No complaints found\n", out)
}

func TestRun_HashSecret(t *testing.T) {
	out, err := runCLI(t, "hash-secret", "Dashboard2025Key")
	require.NoError(t, err)

	hash := strings.TrimSpace(strings.TrimPrefix(out, "ADMIN_PASSWORD_HASH="))
	assert.True(t, pkgauth.IsBcryptHash(hash))
	assert.NoError(t, pkgauth.CompareSecret(hash, "Dashboard2025Key"))

	_, err = runCLI(t, "hash-secret", "short")
	assert.Error(t, err)
}

func TestRun_UnknownCommand(t *testing.T) {
	srv := newTestAPI(t)

	_, err := runCLI(t, "-url", srv.URL, "-secret", testSecret, "explode")
	assert.ErrorContains(t, err, "unknown command")
}
