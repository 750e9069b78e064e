// Package auth holds the bcrypt helpers for the admin shared secret.
package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is paid on every admin request, so it stays at 12.
	BcryptCost   = 12
	MinSecretLen = 12
	MaxSecretLen = 72 // bcrypt ignores anything longer
)

// SecretValidationError lists every rule a candidate secret breaks.
type SecretValidationError struct {
	Errors []string
}

func (e *SecretValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "secret validation failed"
	}
	return "weak secret: " + strings.Join(e.Errors, "; ")
}

var commonSecrets = map[string]bool{
	"password":     true,
	"password123":  true,
	"admin":        true,
	"admin123":     true,
	"changeme":     true,
	"letmein":      true,
	"welcome":      true,
	"womenrise":    true,
	"womenrise123": true,
	"123456789012": true,
}

func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

func CompareSecret(hashed, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret))
}

// IsBcryptHash reports whether s looks like a bcrypt hash with a valid cost.
func IsBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// ValidateSecret enforces the strength rules for a new admin secret.
func ValidateSecret(secret string) error {
	errs := make([]string, 0)

	if len(secret) < MinSecretLen {
		errs = append(errs, fmt.Sprintf("must be at least %d characters", MinSecretLen))
	}
	if len(secret) > MaxSecretLen {
		errs = append(errs, fmt.Sprintf("must be at most %d bytes", MaxSecretLen))
	}

	var hasLetter, hasDigit bool
	for _, r := range secret {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		errs = append(errs, "must mix letters and digits")
	}

	if commonSecrets[strings.ToLower(secret)] {
		errs = append(errs, "is too common")
	}

	if len(errs) > 0 {
		return &SecretValidationError{Errors: errs}
	}
	return nil
}
