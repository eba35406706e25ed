package providers

import (
	"errors"
	"fmt"
)

// authError is a fatal failure: retrying with the same credentials cannot
// help, so the whole scan run is invalidated.
type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

// Fatal marks the error as scan-aborting for the engine.
func (e *authError) Fatal() bool { return true }

// rateLimitError is transient: the provider asked us to back off.
type rateLimitError struct{}

func (e *rateLimitError) Error() string { return "rate limited" }

// serverError is a transient upstream 5xx.
type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string {
	return "server error: " + e.body
}

// transportError wraps network-level failures (connection refused, timeout).
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.err)
}

func (e *transportError) Unwrap() error { return e.err }

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

// IsTransient checks if an error is expected to be retry-recoverable.
func IsTransient(err error) bool {
	var (
		rl *rateLimitError
		se *serverError
		te *transportError
	)
	return errors.As(err, &rl) || errors.As(err, &se) || errors.As(err, &te)
}

func isRetryable(err error) bool {
	return IsTransient(err)
}
