package model

import (
	"errors"
)

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error kinds returned by the key-management core. Call sites wrap them with
// context, callers match with errors.Is.
var (
	ErrInvalidPath         = errors.New("invalid derivation path")
	ErrInvalidKey          = errors.New("invalid private key")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrMissingParameter    = errors.New("missing parameter")
	ErrDecryptionFailed    = errors.New("decryption failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrNotFound            = errors.New("not found")
)

type errorKind struct {
	err     error
	code    string
	message string
}

// ordered: the first matching kind wins
var errorKinds = []errorKind{
	{ErrDecryptionFailed, "DECRYPTION_FAILED", "Incorrect PIN"},
	{ErrInvalidPath, "INVALID_PATH", "Invalid derivation path"},
	{ErrInvalidKey, "INVALID_KEY", "Invalid private key"},
	{ErrInvalidAddress, "INVALID_ADDRESS", "Invalid address"},
	{ErrInvalidAmount, "INVALID_AMOUNT", "Invalid amount"},
	{ErrMissingParameter, "MISSING_PARAMETER", "Missing required parameter"},
	{ErrUpstreamUnavailable, "UPSTREAM_UNAVAILABLE", "Network is unavailable, try again later"},
	{ErrNotFound, "NOT_FOUND", "Not found"},
}

// ErrorCode returns a stable machine-readable code for err, or "INTERNAL"
// when err is not one of the known kinds.
func ErrorCode(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return "INTERNAL"
}

// UserMessage returns text that is safe to show to the user. It never
// contains cryptographic detail.
func UserMessage(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.message
		}
	}
	return "Internal error"
}

// NewErrorResponse builds the API error body for err.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Error: UserMessage(err),
		Code:  ErrorCode(err),
	}
}
