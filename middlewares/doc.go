// Package middlewares provides HTTP middleware for bulkmail applications.
//
// # Request ID
//
// RequestID assigns a unique ID to each request. An upstream X-Request-ID or
// X-Correlation-ID header is kept; otherwise a ULID is generated.
//
//	app := bulkmail.New(
//	    bulkmail.WithLogger("bulkmail", middlewares.RequestIDExtractor()),
//	    bulkmail.WithMiddleware(middlewares.RequestID()),
//	)
//
// RequestIDExtractor adds "request_id" to every log entry written with the
// request context.
//
// # Logger
//
// Logger writes one line per request with method, path, status, size and
// duration. 4xx responses log at warn and 5xx at error:
//
//	bulkmail.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Logger(middlewares.WithLoggerSkipPaths("/health/live", "/health/ready")),
//	)
//
// # Recover
//
// Recover converts panics into a *PanicError for the global ErrorHandler.
//
// # Timeout
//
// Timeout bounds a route and returns a *TimeoutError when the deadline passes.
// Handlers use GetTimeoutContext for blocking calls:
//
//	r.GET("/api/subscribe-emails", h.unsubscribed, middlewares.Timeout(10*time.Second))
//
//	func (h *API) unsubscribed(c bulkmail.Context) error {
//	    set, err := h.subs.FetchUnsubscribed(middlewares.GetTimeoutContext(c))
//	    ...
//	}
//
// PanicError and TimeoutError expose StatusCode, so an ErrorHandler can map
// them without knowing the concrete types.
package middlewares
