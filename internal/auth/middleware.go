package auth

import (
	"net/http"
	"time"

	pkghttp "github.com/mantavyam/jacob-web/pkg/http"
	"github.com/mantavyam/jacob-web/pkg/logger"
)

// Verifier decides whether a presented admin secret is valid.
type Verifier interface {
	Verify(candidate string) bool
}

// AdminGuard bundles what RequireAdminSecret needs.
type AdminGuard struct {
	Verifier Verifier
	Audit    *logger.AuditLogger
	Timing   *TimingDelay
	IPConfig *pkghttp.IPConfig
}

// RequireAdminSecret rejects requests without the admin secret header before
// they reach any handler. Failures are delayed and audited.
func RequireAdminSecret(g AdminGuard) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			presented := r.Header.Get(AdminSecretHeader)

			if g.Verifier.Verify(presented) {
				next.ServeHTTP(w, r)
				return
			}

			reason := "invalid secret"
			if presented == "" {
				reason = "missing secret"
			}
			if g.Audit != nil {
				g.Audit.LogAdminAuth(logger.AuditEvent{
					EventType:     "admin_access",
					IPAddress:     pkghttp.ExtractClientIP(r, g.IPConfig),
					UserAgent:     r.UserAgent(),
					Path:          r.URL.Path,
					Success:       false,
					FailureReason: reason,
				})
			}
			if g.Timing != nil {
				g.Timing.WaitFrom(r.Context(), start, false)
			}

			pkghttp.WriteUnauthorized(w, "Unauthorized access")
		})
	}
}
