package validation

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"gitpanel/internal/errors"
	"gitpanel/shared/types"
)

const maxBodyBytes = 1 << 20

// Validator is implemented by request checks that run after decoding.
type Validator interface {
	Validate(req *types.Request) error
}

type ValidatorFunc func(req *types.Request) error

func (f ValidatorFunc) Validate(req *types.Request) error {
	return f(req)
}

// RequireFilePath rejects requests without a file_path.
var RequireFilePath = ValidatorFunc(func(req *types.Request) error {
	if strings.TrimSpace(req.FilePath) == "" {
		return errors.ValidationError("file_path is required", map[string]string{"field": "file_path"})
	}
	return nil
})

// DecodeRequest reads the JSON body, requires local_path and then applies
// the extra checks in order.
func DecodeRequest(w http.ResponseWriter, r *http.Request, checks ...Validator) (*types.Request, error) {
	var req types.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			return nil, errors.ValidationError("request body is required", nil)
		}
		return nil, errors.ValidationError("invalid request body", err.Error())
	}

	if strings.TrimSpace(req.LocalPath) == "" {
		return nil, errors.ValidationError("local_path is required", map[string]string{"field": "local_path"})
	}
	for _, check := range checks {
		if err := check.Validate(&req); err != nil {
			return nil, err
		}
	}
	return &req, nil
}
