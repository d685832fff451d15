// Package httpx provides the uniform {status, error, data} response envelope.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Envelope wraps every API response.
type Envelope struct {
	Status int     `json:"status"`
	Error  *string `json:"error"`
	Data   any     `json:"data"`
}

// JSON sends v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK sends a 200 envelope carrying data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Status: http.StatusOK, Data: data})
}

// Fail sends an error envelope with a null data field.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Status: status, Error: &message})
}

// DecodeJSON decodes the request body into target. Malformed or empty bodies
// are reported as ErrValidation.
func DecodeJSON(r *http.Request, target any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body is required", ErrValidation)
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", ErrValidation)
		}
		return fmt.Errorf("%w: invalid request body: %v", ErrValidation, err)
	}
	return nil
}
