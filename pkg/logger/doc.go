// Package logger builds slog loggers with context extraction and optional Sentry reporting.
//
// Context extractors add request-scoped attributes, such as the request ID, to every
// record logged with a context:
//
//	log := logger.NewWithConfig(cfg.Log, middlewares.RequestIDExtractor())
//	log.InfoContext(ctx, "batch finished", slog.Int("sent", report.Sent))
//
// NewWithSentry additionally forwards records to Sentry. Errors create issues;
// records at or above SentryConfig.MinLevel are stored as logs. Without a DSN the
// logger only writes to the base handler, so the same wiring works locally.
// Register FlushSentry as a shutdown hook to drain buffered events.
package logger
