package api

import (
	"errors"
	"fmt"
)

// AuthError indicates the server rejected the caller's credentials or
// bearer token. Receiving one from any endpoint means the stored session
// is no longer valid.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// ValidationError indicates the server rejected the request payload
// (malformed input, conflicting email, and so on). Message is safe to
// show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "invalid input"
	}
	return e.Message
}

// IsValidationError reports whether err chains to a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// StatusError is any other non-2xx response. Message carries the server's
// detail text when one was provided.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// UserMessage extracts a displayable message from an API error, falling
// back to the given default for transport failures and unstructured
// responses.
func UserMessage(err error, fallback string) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) && vErr.Message != "" {
		return vErr.Message
	}
	var aErr *AuthError
	if errors.As(err, &aErr) && aErr.Message != "" {
		return aErr.Message
	}
	var sErr *StatusError
	if errors.As(err, &sErr) && sErr.Message != "" {
		return sErr.Message
	}
	return fallback
}
