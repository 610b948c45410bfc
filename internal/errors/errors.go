package errors

import (
	"errors"
	"fmt"
)

// Gateway error taxonomy
var (
	// Local precondition failures, surfaced without contacting the upstream
	ErrNoRefreshToken = errors.New("no refresh token")

	// Upstream failures
	ErrUpstreamRejected          = errors.New("upstream rejected request")
	ErrUpstreamUnreachable       = errors.New("upstream unreachable")
	ErrMalformedUpstreamResponse = errors.New("malformed upstream response")

	// Coordination errors
	ErrCoordinationUnavailable = errors.New("coordination store unavailable")

	// General errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
