package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name string `json:"name" validate:"required,max=5"`
}

func TestValidateAndDecode(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"bob"}`, false},
		{"malformed", `{"name":`, true},
		{"unknown field", `{"name":"bob","extra":1}`, true},
		{"missing required", `{}`, true},
		{"too long", `{"name":"bobbobbob"}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var p samplePayload

			appErr := ValidateAndDecode(req, &p)

			if tc.wantErr {
				require.NotNil(t, appErr)
				assert.Equal(t, http.StatusBadRequest, appErr.Code)
			} else {
				assert.Nil(t, appErr)
				assert.Equal(t, "bob", p.Name)
			}
		})
	}
}

func TestAppError_SendHidesInternalError(t *testing.T) {
	rr := httptest.NewRecorder()
	NewAppError(http.StatusInternalServerError, "Internal server error", errors.New("pq: relation does not exist")).Send(rr)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"code":500,"message":"Internal server error"}`, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "pq:")
}

func TestValidateAndDecode_RejectsOversizedBody(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var p samplePayload

	appErr := ValidateAndDecode(req, &p)

	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}
