package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"gitpanel/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		checks  []Validator
		wantErr string
	}{
		{name: "valid", body: `{"local_path":"/repo","message":"m"}`},
		{name: "history", body: `{"local_path":"/repo","file_path":"a.txt"}`, checks: []Validator{RequireFilePath}},
		{name: "empty body", body: ``, wantErr: "request body is required"},
		{name: "malformed", body: `{"local_path":`, wantErr: "invalid request body"},
		{name: "unknown field", body: `{"local_path":"/repo","branch":"main"}`, wantErr: "invalid request body"},
		{name: "missing local_path", body: `{"message":"m"}`, wantErr: "local_path is required"},
		{name: "missing file_path", body: `{"local_path":"/repo"}`, checks: []Validator{RequireFilePath}, wantErr: "file_path is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/status", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			got, err := DecodeRequest(rec, req, tt.checks...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/repo", got.LocalPath)
		})
	}
}
