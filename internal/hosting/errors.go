package hosting

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureKind classifies provider failures with stable codes.
type FailureKind string

const (
	// FailureNoCredential indicates no token is configured for the provider
	FailureNoCredential FailureKind = "NO_CREDENTIAL"
	// FailureInvalidCredential indicates the provider rejected the token
	FailureInvalidCredential FailureKind = "INVALID_CREDENTIAL"
	// FailureRateLimited indicates the provider throttled the request
	FailureRateLimited FailureKind = "RATE_LIMITED"
	// FailureNotFound indicates the project or commit does not exist
	FailureNotFound FailureKind = "NOT_FOUND"
	// FailureNetwork indicates a transport-level error
	FailureNetwork FailureKind = "NETWORK_ERROR"
	// FailureUnknown indicates an unexpected provider response
	FailureUnknown FailureKind = "UNKNOWN"
)

// ProviderError is the typed failure result of a provider operation.
// Expected failure modes are always represented as values, never panics.
type ProviderError struct {
	Kind         FailureKind `json:"kind"`
	Message      string      `json:"message"`
	StatusCode   int         `json:"statusCode,omitempty"`
	ShouldNotify bool        `json:"shouldNotify"`
	cause        error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s] %s (HTTP %d)", e.Kind, e.Message, e.StatusCode)
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *ProviderError) Unwrap() error {
	return e.cause
}

// AsProviderError extracts a *ProviderError from an error chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// classifyStatus maps a non-2xx HTTP status to a failure kind.
// 401/403 are credential problems; everything else degrades silently.
func classifyStatus(status int) FailureKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return FailureInvalidCredential
	case http.StatusNotFound:
		return FailureNotFound
	case http.StatusTooManyRequests:
		return FailureRateLimited
	default:
		return FailureUnknown
	}
}

func networkError(err error) *ProviderError {
	return &ProviderError{
		Kind:    FailureNetwork,
		Message: "request failed",
		cause:   err,
	}
}

func noCredentialError(identity Identity) *ProviderError {
	return &ProviderError{
		Kind:    FailureNoCredential,
		Message: fmt.Sprintf("no %s credential configured", identity.DisplayName),
	}
}
