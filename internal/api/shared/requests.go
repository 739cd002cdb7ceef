package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// maxJSONBodyBytes bounds JSON request bodies. Documents travel as multipart
// uploads, so JSON bodies only carry small option payloads.
const maxJSONBodyBytes = 1 << 20

// Decoding errors returned by DecodeJSON.
var (
	ErrEmptyBody   = errors.New("request body is empty")
	ErrInvalidJSON = errors.New("invalid JSON body")
)

var validate = validator.New()

// DecodeJSON decodes the request body into v. Unknown fields are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// ValidateRequest validates v with its struct tags.
func ValidateRequest(v any) error {
	return validate.Struct(v)
}
