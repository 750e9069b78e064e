// Package validation holds the complaint submission rules shared by the API
// server and the Go clients, so both sides accept and reject the same input.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MinComplaintLength is the minimum trimmed length of the complaint text.
const MinComplaintLength = 20

// DateLayout is the wire format of the date of birth.
const DateLayout = "2006-01-02"

var (
	pinPattern    = regexp.MustCompile(`^[0-9]{6}$`)
	mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)
	// local@domain.tld, no whitespace and a single @
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Submission is a candidate complaint exactly as posted by the public form.
type Submission struct {
	Username  string `json:"username" validate:"required"`
	Date      string `json:"date" validate:"required,isodate"`
	Address   string `json:"address" validate:"required"`
	State     string `json:"state" validate:"required"`
	District  string `json:"district" validate:"required"`
	Pin       string `json:"pin" validate:"pin"`
	Email     string `json:"email" validate:"emailshape"`
	Mob       string `json:"mob" validate:"mobile"`
	Gender    string `json:"gender" validate:"required"`
	Religion  string `json:"religion,omitempty"`
	Caste     string `json:"caste,omitempty"`
	Complaint string `json:"complaint" validate:"required,complaintlen"`
}

// UnmarshalJSON reads the form as a browser or script posts it. Scalar values
// are taken as text, so a numeric pin or mob keeps its digits. A field holding
// an object or array is reported as a field error rather than failing the body.
func (s *Submission) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := []struct {
		name string
		dst  *string
	}{
		{"username", &s.Username},
		{"date", &s.Date},
		{"address", &s.Address},
		{"state", &s.State},
		{"district", &s.District},
		{"pin", &s.Pin},
		{"email", &s.Email},
		{"mob", &s.Mob},
		{"gender", &s.Gender},
		{"religion", &s.Religion},
		{"caste", &s.Caste},
		{"complaint", &s.Complaint},
	}

	verrs := &Errors{}
	for _, f := range fields {
		value, ok := raw[f.name]
		if !ok {
			continue
		}
		text, ok := scalarText(value)
		if !ok {
			verrs.Fields = append(verrs.Fields, FieldError{Field: f.name, Msg: messageFor(f.name, "scalar")})
			continue
		}
		*f.dst = text
	}
	if len(verrs.Fields) > 0 {
		return verrs
	}
	return nil
}

// scalarText renders a JSON string, number, boolean or null as text.
func scalarText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", true
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		return "", false
	case 'n':
		return "", true
	default:
		// numbers and booleans keep their literal spelling
		return string(raw), true
	}
}

// FieldError is a single human-readable validation failure.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// Errors is an ordered list of field errors. It implements error.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Fields[0].Field, e.Fields[0].Msg)
}

// messages maps a JSON field name to the message shown to the submitter.
var messages = map[string]string{
	"username":  "Full name is required",
	"date":      "Valid date of birth is required",
	"address":   "Address is required",
	"state":     "State is required",
	"district":  "District is required",
	"pin":       "Valid 6-digit PIN code is required",
	"email":     "Valid email is required",
	"mob":       "Valid 10-digit mobile number is required",
	"gender":    "Gender is required",
	"complaint": fmt.Sprintf("Complaint details must be at least %d characters", MinComplaintLength),
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so messages line up with the form fields.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "pin", func(fl validator.FieldLevel) bool {
		return pinPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "emailshape", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "complaintlen", func(fl validator.FieldLevel) bool {
		return len([]rune(fl.Field().String())) >= MinComplaintLength
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// ParseDate parses a date of birth and rejects dates in the future.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	if d.After(time.Now()) {
		return time.Time{}, fmt.Errorf("date %s is in the future", s)
	}
	return d, nil
}

// Normalize trims every field and lower-cases the email address.
func Normalize(s Submission) Submission {
	s.Username = strings.TrimSpace(s.Username)
	s.Date = strings.TrimSpace(s.Date)
	s.Address = strings.TrimSpace(s.Address)
	s.State = strings.TrimSpace(s.State)
	s.District = strings.TrimSpace(s.District)
	s.Pin = strings.TrimSpace(s.Pin)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Mob = strings.TrimSpace(s.Mob)
	s.Gender = strings.TrimSpace(s.Gender)
	s.Religion = strings.TrimSpace(s.Religion)
	s.Caste = strings.TrimSpace(s.Caste)
	s.Complaint = strings.TrimSpace(s.Complaint)
	return s
}

// ValidateSubmission normalizes s and checks every field. It returns nil when
// the submission is accepted, otherwise the failures in form field order.
func ValidateSubmission(s Submission) *Errors {
	s = Normalize(s)

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return &Errors{Fields: []FieldError{{Field: "form", Msg: err.Error()}}}
	}

	// validator reports in struct order; keep one message per field
	seen := make(map[string]bool, len(ve))
	out := &Errors{}
	for _, fe := range ve {
		field := fe.Field()
		if seen[field] {
			continue
		}
		seen[field] = true
		out.Fields = append(out.Fields, FieldError{Field: field, Msg: messageFor(field, fe.Tag())})
	}
	return out
}

func messageFor(field, tag string) string {
	if msg, ok := messages[field]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed validation: %s", field, tag)
}
