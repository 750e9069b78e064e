package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() Submission {
	return Submission{
		Username:  "Asha Devi",
		Date:      "1990-05-01",
		Address:   "12 MG Road",
		State:     "Karnataka",
		District:  "Bengaluru",
		Pin:       "560001",
		Email:     "asha@example.com",
		Mob:       "9876543210",
		Gender:    "Female",
		Complaint: "Facing harassment at workplace, need assistance.",
	}
}

func fields(errs *Errors) []string {
	if errs == nil {
		return nil
	}
	out := make([]string, 0, len(errs.Fields))
	for _, f := range errs.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestValidateSubmission_Valid(t *testing.T) {
	assert.Nil(t, ValidateSubmission(validSubmission()))
}

func TestValidateSubmission_OptionalFieldsMayBeEmpty(t *testing.T) {
	s := validSubmission()
	s.Religion = ""
	s.Caste = ""
	assert.Nil(t, ValidateSubmission(s))
}

func TestValidateSubmission_EmptyFormReportsEveryRequiredFieldInOrder(t *testing.T) {
	errs := ValidateSubmission(Submission{})
	require.NotNil(t, errs)

	assert.Equal(t, []string{
		"username", "date", "address", "state", "district",
		"pin", "email", "mob", "gender", "complaint",
	}, fields(errs))
	assert.Equal(t, "Full name is required", errs.Fields[0].Msg)
}

func TestValidateSubmission_WhitespaceOnlyIsMissing(t *testing.T) {
	s := validSubmission()
	s.Username = "   "
	s.District = "\t"

	assert.Equal(t, []string{"username", "district"}, fields(ValidateSubmission(s)))
}

func TestValidateSubmission_Pin(t *testing.T) {
	tests := []struct {
		pin   string
		valid bool
	}{
		{"560001", true},
		{" 560001 ", true},
		{"56000", false},
		{"5600011", false},
		{"56000a", false},
		{"", false},
		{"５６０００１", false}, // full-width digits
	}

	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			s := validSubmission()
			s.Pin = tt.pin
			errs := ValidateSubmission(s)
			if tt.valid {
				assert.Nil(t, errs)
			} else {
				assert.Equal(t, []string{"pin"}, fields(errs))
			}
		})
	}
}

func TestValidateSubmission_Mobile(t *testing.T) {
	tests := []struct {
		mob   string
		valid bool
	}{
		{"9876543210", true},
		{"987654321", false},
		{"98765432101", false},
		{"+919876543", false},
		{"98765 4321", false},
	}

	for _, tt := range tests {
		t.Run(tt.mob, func(t *testing.T) {
			s := validSubmission()
			s.Mob = tt.mob
			errs := ValidateSubmission(s)
			if tt.valid {
				assert.Nil(t, errs)
			} else {
				assert.Equal(t, []string{"mob"}, fields(errs))
			}
		})
	}
}

func TestValidateSubmission_BadPinAndMobileRejectedEvenWhenRestIsValid(t *testing.T) {
	s := validSubmission()
	s.Pin = "12"
	s.Mob = "12"

	errs := ValidateSubmission(s)
	require.NotNil(t, errs)
	assert.Equal(t, []string{"pin", "mob"}, fields(errs))
}

func TestValidateSubmission_Email(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"asha@example.com", true},
		{"ASHA@Example.COM", true},
		{"a.b+c@mail.example.org", true},
		{"asha@example", false},
		{"asha example.com", false},
		{"@example.com", false},
		{"asha@@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			s := validSubmission()
			s.Email = tt.email
			errs := ValidateSubmission(s)
			if tt.valid {
				assert.Nil(t, errs)
			} else {
				assert.Equal(t, []string{"email"}, fields(errs))
			}
		})
	}
}

func TestValidateSubmission_Date(t *testing.T) {
	future := time.Now().AddDate(1, 0, 0).Format(DateLayout)

	for _, date := range []string{"1990-13-01", "01-05-1990", "yesterday", future} {
		t.Run(date, func(t *testing.T) {
			s := validSubmission()
			s.Date = date
			assert.Equal(t, []string{"date"}, fields(ValidateSubmission(s)))
		})
	}
}

func TestValidateSubmission_ComplaintMinimumLength(t *testing.T) {
	s := validSubmission()

	s.Complaint = strings.Repeat("x", MinComplaintLength-1)
	assert.Equal(t, []string{"complaint"}, fields(ValidateSubmission(s)))

	s.Complaint = "   " + strings.Repeat("x", MinComplaintLength-1) + "   "
	assert.Equal(t, []string{"complaint"}, fields(ValidateSubmission(s)), "padding must not count")

	s.Complaint = strings.Repeat("x", MinComplaintLength)
	assert.Nil(t, ValidateSubmission(s))

	// multi-byte characters count once
	s.Complaint = strings.Repeat("न", MinComplaintLength)
	assert.Nil(t, ValidateSubmission(s))
}

func TestNormalize(t *testing.T) {
	s := validSubmission()
	s.Email = "  Asha@Example.COM "
	s.Username = "  Asha Devi "
	s.Religion = " Hindu "

	n := Normalize(s)
	assert.Equal(t, "asha@example.com", n.Email)
	assert.Equal(t, "Asha Devi", n.Username)
	assert.Equal(t, "Hindu", n.Religion)
}

func TestErrors_Error(t *testing.T) {
	errs := &Errors{Fields: []FieldError{{Field: "pin", Msg: "Valid 6-digit PIN code is required"}}}
	assert.Equal(t, "validation failed: pin: Valid 6-digit PIN code is required", errs.Error())

	var empty *Errors
	assert.Equal(t, "validation failed", empty.Error())
}

func TestSubmission_UnmarshalJSON(t *testing.T) {
	t.Run("numeric pin and mobile keep their digits", func(t *testing.T) {
		var sub Submission
		err := json.Unmarshal([]byte(`{"username":"Asha Devi","pin":560001,"mob":9876543210,"religion":null}`), &sub)
		require.NoError(t, err)
		assert.Equal(t, "Asha Devi", sub.Username)
		assert.Equal(t, "560001", sub.Pin)
		assert.Equal(t, "9876543210", sub.Mob)
		assert.Empty(t, sub.Religion)
	})

	t.Run("decoded numbers pass validation", func(t *testing.T) {
		body, err := json.Marshal(validSubmission())
		require.NoError(t, err)
		body = []byte(strings.Replace(string(body), `"pin":"560001"`, `"pin":560001`, 1))

		var sub Submission
		require.NoError(t, json.Unmarshal(body, &sub))
		assert.Nil(t, ValidateSubmission(sub))
	})

	t.Run("objects and arrays become field errors", func(t *testing.T) {
		var sub Submission
		err := json.Unmarshal([]byte(`{"pin":{"a":1},"mob":["98"],"state":"Kerala"}`), &sub)

		var verrs *Errors
		require.True(t, errors.As(err, &verrs))
		require.Len(t, verrs.Fields, 2)
		assert.Equal(t, FieldError{Field: "pin", Msg: "Valid 6-digit PIN code is required"}, verrs.Fields[0])
		assert.Equal(t, "mob", verrs.Fields[1].Field)
	})

	t.Run("non-object body is a syntax level failure", func(t *testing.T) {
		var sub Submission
		err := json.Unmarshal([]byte(`["not","a","form"]`), &sub)
		require.Error(t, err)
		var verrs *Errors
		assert.False(t, errors.As(err, &verrs))
	})
}
