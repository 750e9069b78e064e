package logger

import (
	"net/url"
	"strings"
)

// SanitizedEmail masks an email address for logging (e.g., "u***@e***.com")
func SanitizedEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "[invalid-email]"
	}

	username := parts[0]
	domain := parts[1]

	if len(username) > 1 {
		username = string(username[0]) + strings.Repeat("*", len(username)-1)
	}

	// keep only the TLD readable
	domainParts := strings.Split(domain, ".")
	if len(domainParts) > 1 {
		for i := 0; i < len(domainParts)-1; i++ {
			domainParts[i] = strings.Repeat("*", len(domainParts[i]))
		}
		domain = strings.Join(domainParts, ".")
	}

	return username + "@" + domain
}

// SanitizedMobile keeps the last four digits of a phone number.
func SanitizedMobile(mobile string) string {
	if len(mobile) <= 4 {
		return strings.Repeat("*", len(mobile))
	}
	return strings.Repeat("*", len(mobile)-4) + mobile[len(mobile)-4:]
}

var sensitiveParams = map[string]bool{
	"password": true,
	"secret":   true,
	"email":    true,
	"mobile":   true,
	"mob":      true,
	"refid":    true,
	"token":    true,
}

// SanitizeQueryString reports whether the query string carries a parameter
// that identifies a complainant or a credential, in which case it must not be
// logged verbatim.
func SanitizeQueryString(rawQuery string) bool {
	if rawQuery == "" {
		return false
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// unparseable queries are redacted wholesale
		return true
	}
	for key := range values {
		if sensitiveParams[strings.ToLower(key)] {
			return true
		}
	}
	return false
}
