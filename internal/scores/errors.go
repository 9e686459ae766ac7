package scores

import (
	"errors"
	"fmt"
)

// Error kinds returned by Store. Failures wrap one of these together with the
// underlying driver error, so errors.Is matches the kind and the driver message is kept.
var (
	ErrInit   = errors.New("score store init failed")
	ErrWrite  = errors.New("score store write failed")
	ErrRead   = errors.New("score store read failed")
	ErrClosed = errors.New("score store is closed")
)

var errNonFinite = errors.New("completion time must be a finite number")

func wrap(kind error, op string, err error) error {
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}
