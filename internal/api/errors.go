package api

import (
	"encoding/json"
	"net/http"

	lerrors "botlint/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Success        bool                `json:"success"`
	Error          string              `json:"error"`
	Code           string              `json:"code"`
	Details        interface{}         `json:"details,omitempty"`
	SuggestedFixes []lerrors.FixAction `json:"suggestedFixes,omitempty"`
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error, status int) {
	resp := ErrorResponse{
		Error: err.Error(),
		Code:  string(lerrors.InternalError),
	}

	if lintErr, ok := err.(*lerrors.LintError); ok {
		resp.Error = lintErr.Message
		resp.Code = string(lintErr.Code)
		resp.Details = lintErr.Details
		resp.SuggestedFixes = lintErr.SuggestedFixes
	}

	WriteJSON(w, resp, status)
}

// WriteLintError writes a LintError with automatic status code mapping
func WriteLintError(w http.ResponseWriter, err *lerrors.LintError) {
	WriteError(w, err, MapErrorToStatus(err.Code))
}

// MapErrorToStatus maps error codes to HTTP status codes
func MapErrorToStatus(code lerrors.ErrorCode) int {
	switch code {
	case lerrors.InvalidInput:
		return http.StatusBadRequest // 400
	case lerrors.Unauthorized:
		return http.StatusUnauthorized // 401
	case lerrors.RunNotFound:
		return http.StatusNotFound // 404
	case lerrors.InputTooLarge:
		return http.StatusRequestEntityTooLarge // 413
	case lerrors.UnsupportedFormat:
		return http.StatusUnsupportedMediaType // 415
	case lerrors.RateLimited:
		return http.StatusTooManyRequests // 429
	case lerrors.StorageUnavailable:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(data)
}

// BadRequest writes a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string) {
	WriteLintError(w, lerrors.New(lerrors.InvalidInput, message, nil))
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string, err error) {
	WriteLintError(w, lerrors.New(lerrors.InternalError, message, err))
}

// MethodNotAllowed writes a 405 with the allowed methods
func MethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	WriteError(w, lerrors.New(lerrors.InvalidInput, "method not allowed", nil), http.StatusMethodNotAllowed)
}
