package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mantavyam/jacob-web/internal/config"
	pkgauth "github.com/mantavyam/jacob-web/pkg/auth"
	"github.com/mantavyam/jacob-web/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretVerifier_Plain(t *testing.T) {
	v, err := NewSecretVerifier(config.AdminConfig{Password: "admin123"})
	require.NoError(t, err)

	assert.True(t, v.Verify("admin123"))
	assert.False(t, v.Verify("admin1234"))
	assert.False(t, v.Verify("Admin123"))
	assert.False(t, v.Verify(""))
}

func TestSecretVerifier_Hash(t *testing.T) {
	hash, err := pkgauth.HashSecret("review-desk-2025")
	require.NoError(t, err)

	v, err := NewSecretVerifier(config.AdminConfig{Password: "ignored", PasswordHash: hash})
	require.NoError(t, err)

	assert.True(t, v.Verify("review-desk-2025"))
	assert.False(t, v.Verify("ignored"), "hash wins over the plain secret")
}

func TestNewSecretVerifier_Errors(t *testing.T) {
	_, err := NewSecretVerifier(config.AdminConfig{})
	assert.Error(t, err)

	_, err = NewSecretVerifier(config.AdminConfig{PasswordHash: "not-bcrypt"})
	assert.Error(t, err)
}

func newGuard(t *testing.T, logBuf *bytes.Buffer) (AdminGuard, *int) {
	t.Helper()
	v, err := NewSecretVerifier(config.AdminConfig{Password: "admin123"})
	require.NoError(t, err)

	slept := 0
	timing := NewTimingDelay(TimingConfig{BaseDelay: time.Second})
	timing.sleep = func(ctx context.Context, d time.Duration) { slept++ }

	return AdminGuard{
		Verifier: v,
		Audit:    logger.NewAuditLogger(slog.New(slog.NewJSONHandler(logBuf, nil))),
		Timing:   timing,
	}, &slept
}

func TestRequireAdminSecret(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantNext   bool
		wantReason string
	}{
		{"valid secret", "admin123", http.StatusOK, true, ""},
		{"wrong secret", "guess", http.StatusUnauthorized, false, "invalid secret"},
		{"missing header", "", http.StatusUnauthorized, false, "missing secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf bytes.Buffer
			guard, slept := newGuard(t, &logBuf)

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/complaints/stats", nil)
			if tt.header != "" {
				req.Header.Set(AdminSecretHeader, tt.header)
			}
			w := httptest.NewRecorder()

			RequireAdminSecret(guard)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantNext, called)

			if tt.wantNext {
				assert.Zero(t, *slept)
				assert.Empty(t, logBuf.String())
				return
			}

			assert.Equal(t, 1, *slept, "failures are delayed")
			assert.JSONEq(t, `{"success":false,"error":"unauthorized","message":"Unauthorized access"}`, w.Body.String())

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(logBuf.Bytes(), &entry))
			assert.Equal(t, tt.wantReason, entry["failure_reason"])
			assert.Equal(t, "/api/complaints/stats", entry["path"])
		})
	}
}

func TestTimingDelay_WaitFrom(t *testing.T) {
	var got time.Duration
	td := NewTimingDelay(TimingConfig{BaseDelay: 100 * time.Millisecond})
	td.sleep = func(ctx context.Context, d time.Duration) { got = d }

	td.WaitFrom(context.Background(), time.Now().Add(-40*time.Millisecond), false)
	assert.InDelta(t, float64(60*time.Millisecond), float64(got), float64(10*time.Millisecond))

	got = 0
	td.WaitFrom(context.Background(), time.Now(), true)
	assert.Zero(t, got, "success is not delayed")

	td.WaitFrom(context.Background(), time.Now().Add(-time.Second), false)
	assert.Zero(t, got, "already slow enough")
}

func TestTimingDelay_Jitter(t *testing.T) {
	cfg := TimingConfig{BaseDelay: 10 * time.Millisecond, RandomDelay: 5 * time.Millisecond}
	td := NewTimingDelay(cfg)

	var got time.Duration
	td.sleep = func(ctx context.Context, d time.Duration) { got = d }

	for i := 0; i < 20; i++ {
		td.WaitFrom(context.Background(), time.Now(), false)
		assert.LessOrEqual(t, got, 15*time.Millisecond)
		assert.Greater(t, got, 5*time.Millisecond)
	}
}

func TestSleepCtx_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	sleepCtx(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}
