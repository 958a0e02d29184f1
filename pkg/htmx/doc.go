// Package htmx provides request detection and response helpers for htmx.
//
// Render options collect HX-* response headers and out-of-band components for a
// single response:
//
//	cfg := htmx.NewConfig(
//		htmx.WithTriggerDetail("batch-finished", report),
//		htmx.WithOOB(views.StatusBanner(msg)),
//	)
//	cfg.ApplyHeaders(w)
package htmx
