// Package response writes JSON bodies for API handlers.
package response

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/digi0/ACE/internal/pkg/errors"
)

// ErrorBody is written for every failed request. Detail repeats the message
// at the top level for clients that only read a flat string.
type ErrorBody struct {
	Error  *apierrors.APIError `json:"error"`
	Detail string              `json:"detail"`
}

// JSON encodes data with status. Encoding errors are dropped since the
// header is already on the wire.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func OK(w http.ResponseWriter, data any)      { JSON(w, http.StatusOK, data) }
func Created(w http.ResponseWriter, data any) { JSON(w, http.StatusCreated, data) }

// Error maps err onto its APIError status. Non-API errors become 500.
func Error(w http.ResponseWriter, err error) {
	apiErr := apierrors.AsAPIError(err)
	JSON(w, apiErr.StatusCode, ErrorBody{Error: apiErr, Detail: apiErr.Message})
}

// ValidationErrors writes a 400 listing every invalid field.
func ValidationErrors(w http.ResponseWriter, fields map[string]string) {
	Error(w, apierrors.NewValidationErrors(fields))
}
