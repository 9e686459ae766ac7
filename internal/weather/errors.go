package weather

import (
	"errors"
	"fmt"
)

// Error kinds returned by Client.Fetch
var (
	ErrInvalidInput      = errors.New("city must not be empty")
	ErrMissingCredential = errors.New("weather API key is not configured")
	ErrTransport         = errors.New("weather request failed")
	ErrDecode            = errors.New("weather response could not be decoded")
	ErrCancelled         = errors.New("weather request cancelled")
)

// TransportError reports a failed request or a non-2xx response.
// StatusCode is zero when no response was received.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", ErrTransport, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrTransport, e.Message)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// DecodeError reports a response body that is not a weather payload
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDecode, e.Message)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}
