// File path: internal/save/errors.go
package save

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks malformed save payloads; the wrapped
	// message names the offending field.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthenticated marks a missing or unknown credential where an
	// owner identity is required.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrStoreUnavailable marks connectivity failures to the backing
	// store; callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrConstraintViolation marks a duplicate version number that
	// survived the bounded internal retry.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrTransactionAborted marks a mid-sequence failure; nothing from
	// the attempt is visible. The originating cause is wrapped.
	ErrTransactionAborted = errors.New("transaction aborted")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
