// Package internal provides the core types and implementation of the bulkmail web layer.
//
// This package is internal and should not be used directly. Import "github.com/dmitrymomot/bulkmail"
// instead, which re-exports the public API.
//
// # Core Types
//
//   - App: Orchestrates HTTP routing, health endpoints and graceful shutdown
//   - Context: Provides request/response access, the browser session and helper methods
//   - Router: Interface handlers use to declare routes
//   - Handler: Interface implemented by types that declare routes on a router
//   - HandlerFunc: Signature for individual route handlers that return errors
//   - Middleware: Wraps handlers to add cross-cutting concerns
//   - ErrorHandler: Custom error handling function for handler errors
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to any function
// that expects a standard library context:
//
//	func (h *Send) single(c bulkmail.Context) error {
//	    msg, err := h.processor.SendSingle(c, compose, name, email)
//	    ...
//	}
//
// # Sessions
//
// Each browser gets a server-side session that holds the compose draft, the
// loaded recipients and the state of the latest run. Context.Session creates
// one lazily and sets the cookie. Dirty sessions are saved right before the
// first byte of the response is written, so handlers only mutate:
//
//	sess, err := c.Session()
//	if err != nil {
//	    return err
//	}
//	sess.SetDraft(draft)
//	return c.Render(http.StatusOK, views.ComposeForm(...))
//
// The cookie carries the session token and is signed when a cookie secret
// is configured.
//
// # HTMX
//
// Render applies HX-* headers and out-of-band components for htmx requests.
// The response writer rewrites 4xx and 5xx statuses to 200 for htmx requests,
// because htmx does not swap error responses; ResponseWriter.Status still
// reports the original code for logging.
//
// # Server Runtime
//
//	err := app.Run(":8080",
//	    bulkmail.Logger(log),
//	    bulkmail.ShutdownHook(func(ctx context.Context) error { return runner.Wait(ctx) }),
//	)
//
// Run blocks until SIGINT/SIGTERM or the base context is canceled, then drains
// in-flight requests and runs shutdown hooks in order.
package internal
