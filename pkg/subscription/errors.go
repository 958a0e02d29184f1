package subscription

import (
	"errors"
	"fmt"
)

// ErrTransport is matched by every *TransportError.
var ErrTransport = errors.New("subscription: transport error")

// TransportError reports a failed fetch of the unsubscribe list.
// StatusCode is zero when no response was received.
type TransportError struct {
	Err        error
	Op         string
	StatusCode int
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("subscription: %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("subscription: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
