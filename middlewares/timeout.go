package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/bulkmail/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout returns middleware that enforces a request timeout.
// If the handler does not complete in time, a TimeoutError is returned
// to the global ErrorHandler.
//
// The handler goroutine keeps running after the timeout. Handlers pass
// GetTimeoutContext(c) to blocking calls so they stop early.
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			c.Set(timeoutContextKey{}, ctx)

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					c.LogWarn("request timeout", "timeout", timeout.String())
					return &TimeoutError{Duration: timeout}
				}
				return ctx.Err()
			}
		}
	}
}

// timeoutContextKey is used to store the timeout context.
type timeoutContextKey struct{}

// GetTimeoutContext returns the deadline-bound context set by Timeout,
// or the request context when the route has no timeout.
func GetTimeoutContext(c internal.Context) context.Context {
	if ctx := internal.ContextValue[context.Context](c, timeoutContextKey{}); ctx != nil {
		return ctx
	}
	return c.Context()
}
