// Package errors defines the error values the API returns to clients.
//
// Every APIError carries a stable machine code and the HTTP status it maps
// to. Services return these values (possibly wrapped); anything else that
// reaches the response layer is reported as ErrInternal.
package errors

import (
	"errors"
	"net/http"
)

// APIError is the client-visible error shape.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Details    any    `json:"details,omitempty"`
}

func newAPIError(status int, code, message string) *APIError {
	return &APIError{Code: code, Message: message, StatusCode: status}
}

func (e *APIError) Error() string { return e.Message }

// Is matches on Code, so copies made by WithMessage still match their base.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e with message replaced.
func (e *APIError) WithMessage(message string) *APIError {
	c := *e
	c.Message = message
	return &c
}

// WithDetails returns a copy of e carrying details.
func (e *APIError) WithDetails(details any) *APIError {
	c := *e
	c.Details = details
	return &c
}

// Session and credential failures. All of them are 401.
var (
	ErrUnauthenticated    = newAPIError(http.StatusUnauthorized, "unauthenticated", "Not authenticated")
	ErrInvalidSession     = newAPIError(http.StatusUnauthorized, "invalid_session", "Invalid session")
	ErrSessionExpired     = newAPIError(http.StatusUnauthorized, "session_expired", "Session expired")
	ErrUserNotFound       = newAPIError(http.StatusUnauthorized, "user_not_found", "User not found")
	ErrInvalidCredentials = newAPIError(http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
)

var (
	ErrForbidden          = newAPIError(http.StatusForbidden, "forbidden", "You don't have permission to perform this action")
	ErrProfileIncomplete  = newAPIError(http.StatusForbidden, "profile_incomplete", "Complete your profile before starting a chat")
	ErrNotFound           = newAPIError(http.StatusNotFound, "not_found", "Resource not found")
	ErrChatNotFound       = newAPIError(http.StatusNotFound, "chat_not_found", "Chat session not found")
	ErrBadRequest         = newAPIError(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrEmailRegistered    = newAPIError(http.StatusBadRequest, "email_registered", "Email already registered")
	ErrConflict           = newAPIError(http.StatusConflict, "conflict", "Resource already exists")
	ErrInternal           = newAPIError(http.StatusInternalServerError, "internal_error", "An internal error occurred")
	ErrServiceUnavailable = newAPIError(http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable")
)

const codeValidation = "validation_error"

// NewValidationError reports a single invalid field.
func NewValidationError(field, message string) *APIError {
	return newAPIError(http.StatusBadRequest, codeValidation, "Validation failed: "+message).
		WithDetails(map[string]string{"field": field, "error": message})
}

// NewValidationErrors reports several invalid fields keyed by name.
func NewValidationErrors(fields map[string]string) *APIError {
	return newAPIError(http.StatusBadRequest, codeValidation, "One or more fields failed validation").
		WithDetails(fields)
}

// NewNotFoundError is ErrNotFound naming the missing resource.
func NewNotFoundError(resource string) *APIError {
	return ErrNotFound.WithMessage(resource + " not found")
}

// AsAPIError extracts the APIError from err's chain, or ErrInternal.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal
}
