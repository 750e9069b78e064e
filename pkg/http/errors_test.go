package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/mantavyam/jacob-web/pkg/http"
	"github.com/mantavyam/jacob-web/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteError(w, 400, "test_error", "Test message")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "test_error", resp["error"])
	assert.Equal(t, "Test message", resp["message"])
}

func TestCommonWriters(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, string)
		status int
		code   string
	}{
		{"bad request", pkghttp.WriteBadRequest, http.StatusBadRequest, "bad_request"},
		{"unauthorized", pkghttp.WriteUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"not found", pkghttp.WriteNotFound, http.StatusNotFound, "not_found"},
		{"too many", pkghttp.WriteTooManyRequests, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"internal", pkghttp.WriteInternalError, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, "msg")

			assert.Equal(t, tt.status, w.Code)
			var resp pkghttp.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, "msg", resp.Message)
		})
	}
}

func TestWriteValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteValidationErrors(w, &validation.Errors{Fields: []validation.FieldError{
		{Field: "pin", Msg: "Valid 6-digit PIN code is required"},
		{Field: "mob", Msg: "Valid 10-digit mobile number is required"},
	}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{
		"success": false,
		"errors": [
			{"field": "pin", "msg": "Valid 6-digit PIN code is required"},
			{"field": "mob", "msg": "Valid 10-digit mobile number is required"}
		]
	}`, w.Body.String())
}

func TestWriteValidationErrors_NilStillEncodesArray(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteValidationErrors(w, nil)
	assert.JSONEq(t, `{"success": false, "errors": []}`, w.Body.String())
}
