// Package httputil centralizes JSON responses and domain error translation
// so every handler returns the same envelope shapes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "mintbank/pkg/domain-errors"
)

// errorResponse is the JSON envelope for rejections.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into an HTTP response. Internal
// errors omit the description so store internals never reach callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}
	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) {
		resp.ErrorDescription = de.Message
	}
	WriteJSON(w, ToHTTPStatus(code), resp)
}

// DecodeJSON decodes the request body into dst, writing a bad_request
// response on failure. The bool result reports whether decoding succeeded.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var dst T
	if err := json.NewDecoder(r.Body).Decode(&dst); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON request body"))
		return dst, false
	}
	return dst, true
}

// ToHTTPStatus maps domain error codes to HTTP statuses.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidAmount, dErrors.CodeBadRequest, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeAccountNotFound:
		return http.StatusNotFound
	case dErrors.CodeAccountExists, dErrors.CodeConcurrencyConflict:
		return http.StatusConflict
	case dErrors.CodeInsufficientFunds:
		return http.StatusUnprocessableEntity
	case dErrors.CodeUnauthorized:
		return http.StatusForbidden
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
