package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/mantavyam/jacob-web/internal/config"
	"github.com/mantavyam/jacob-web/pkg/api"
	pkgauth "github.com/mantavyam/jacob-web/pkg/auth"
)

// AdminSecretHeader carries the shared admin secret on every admin request.
const AdminSecretHeader = api.AdminSecretHeader

// SecretVerifier checks a presented admin secret against the configured
// plain secret or bcrypt hash.
type SecretVerifier struct {
	plainDigest [sha256.Size]byte
	hash        string
}

func NewSecretVerifier(cfg config.AdminConfig) (*SecretVerifier, error) {
	if cfg.PasswordHash != "" {
		if !pkgauth.IsBcryptHash(cfg.PasswordHash) {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash")
		}
		return &SecretVerifier{hash: cfg.PasswordHash}, nil
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("admin secret is not configured")
	}
	return &SecretVerifier{plainDigest: sha256.Sum256([]byte(cfg.Password))}, nil
}

// Verify reports whether candidate is the admin secret. Plain secrets are
// compared as fixed-size digests so neither content nor length leaks.
func (v *SecretVerifier) Verify(candidate string) bool {
	if candidate == "" {
		return false
	}
	if v.hash != "" {
		return pkgauth.CompareSecret(v.hash, candidate) == nil
	}
	digest := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(digest[:], v.plainDigest[:]) == 1
}
