package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/lorrc/incident-desk/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v := NewValidator()
	v.Required("service", " ").
		OneOf("impact", "outage", []string{"OUTAGE", "SLOW"}).
		OneOf("status", "LOST", []string{"OPEN", "CLOSED"}).
		MaxLength("alarmId", strings.Repeat("a", 5), 4).
		Min("hours", 0, 1).
		Custom("from", true, "never added")

	require.True(t, v.HasErrors())
	fields := v.Errors().Errors
	assert.Contains(t, fields, "service")
	assert.NotContains(t, fields, "impact")
	assert.Equal(t, []string{"Must be one of: OPEN, CLOSED"}, fields["status"])
	assert.Contains(t, fields, "alarmId")
	assert.Contains(t, fields, "hours")
	assert.NotContains(t, fields, "from")
	assert.ErrorIs(t, v.Errors(), apperrors.ErrValidation)
}

func TestDecodeAndValidate(t *testing.T) {
	type body struct {
		Service string `json:"service"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{name: "valid", payload: `{"service":"TV"}`},
		{name: "empty body", payload: ``, wantErr: "Request body is required"},
		{name: "malformed", payload: `{"service":`, wantErr: "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			got, err := DecodeAndValidate[body](httptest.NewRecorder(), r)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "TV", got.Service)
				return
			}

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
			assert.Equal(t, tt.wantErr, appErr.Message)
		})
	}
}

func TestQueryParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?hours=6&bad=x&from=100&to=abc&status=%20SENT%20", nil)
	v := NewValidator()

	assert.Equal(t, 6, ParseIntQueryParam(r, v, "hours", 24))
	assert.Equal(t, 24, ParseIntQueryParam(r, v, "missing", 24))
	assert.Equal(t, 1, ParseIntQueryParam(r, v, "bad", 1))
	assert.Equal(t, int64(100), ParseInt64QueryParam(r, v, "from"))
	assert.Equal(t, int64(0), ParseInt64QueryParam(r, v, "to"))
	assert.Equal(t, int64(0), ParseInt64QueryParam(r, v, "until"))
	assert.Equal(t, "SENT", ParseStringQueryParam(r, "status"))

	fields := v.Errors().Errors
	assert.Equal(t, []string{"Must be an integer"}, fields["bad"])
	assert.Equal(t, []string{"Must be an integer"}, fields["to"])
	assert.Equal(t, []string{"This field is required"}, fields["until"])
	assert.NotContains(t, fields, "hours")
}
