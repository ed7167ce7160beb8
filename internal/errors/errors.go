package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidInput indicates a request or file that cannot be analyzed
	InvalidInput ErrorCode = "INVALID_INPUT"
	// InputTooLarge indicates the submitted source exceeds the size limit
	InputTooLarge ErrorCode = "INPUT_TOO_LARGE"
	// RunNotFound indicates no stored analysis run has the given ID
	RunNotFound ErrorCode = "RUN_NOT_FOUND"
	// StorageUnavailable indicates the history database cannot be used
	StorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	// Unauthorized indicates a missing or wrong API token
	Unauthorized ErrorCode = "UNAUTHORIZED"
	// RateLimited indicates the client exceeded the request rate
	RateLimited ErrorCode = "RATE_LIMITED"
	// UnsupportedFormat indicates an unknown output format
	UnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests changing a configuration value
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Setting     string        `json:"setting,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// LintError represents a botlint error with code, message, and suggestions
type LintError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a LintError carrying the default fixes for code.
func New(code ErrorCode, message string, cause error) *LintError {
	return &LintError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *LintError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *LintError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *LintError) WithDetails(details interface{}) *LintError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first LintError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var lintErr *LintError
	if errors.As(err, &lintErr) {
		return lintErr.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	InputTooLarge: {
		{
			Type:        EditConfig,
			Setting:     "server.maxBodyBytes",
			Description: "Raise the request size limit",
		},
	},
	StorageUnavailable: {
		{
			Type:        RunCommand,
			Command:     "botlint history list",
			Safe:        true,
			Description: "Check that the history database opens",
		},
		{
			Type:        EditConfig,
			Setting:     "history.enabled",
			Description: "Disable run history",
		},
	},
	Unauthorized: {
		{
			Type:        RunCommand,
			Command:     "botlint token hash",
			Safe:        true,
			Description: "Generate a token hash for server.tokenHash",
		},
	},
	RateLimited: {
		{
			Type:        EditConfig,
			Setting:     "server.rateLimit.perMinute",
			Description: "Raise the per-client request rate",
		},
	},
	UnsupportedFormat: {
		{
			Type:        RunCommand,
			Command:     "botlint analyze --help",
			Safe:        true,
			Description: "List supported output formats",
		},
	},
	RunNotFound: {
		{
			Type:        RunCommand,
			Command:     "botlint history list",
			Safe:        true,
			Description: "List stored runs",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
