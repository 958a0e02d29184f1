package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/bulkmail/internal"
)

// LoggerConfig configures the request logging middleware.
type LoggerConfig struct {
	SkipPaths []string // Paths that are never logged, e.g. health probes
}

// LoggerOption configures LoggerConfig.
type LoggerOption func(*LoggerConfig)

// WithLoggerSkipPaths excludes exact paths from request logging.
func WithLoggerSkipPaths(paths ...string) LoggerOption {
	return func(cfg *LoggerConfig) {
		cfg.SkipPaths = append(cfg.SkipPaths, paths...)
	}
}

// Logger returns middleware that logs one line per request after the handler returns.
// The status is the one set by the handler, before the HTMX rewrite of error codes.
// Requests ending in 5xx or a handler error log at error level, 4xx at warn.
func Logger(opts ...LoggerOption) internal.Middleware {
	cfg := &LoggerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if _, ok := skip[c.Request().URL.Path]; ok {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			rw := c.ResponseWriter()
			status := rw.Status()
			attrs := []any{
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", status),
				slog.Int64("size", rw.Size()),
				slog.Duration("duration", time.Since(start)),
				slog.Bool("htmx", c.IsHTMX()),
			}

			switch {
			case err != nil:
				c.LogError("request failed", append(attrs, slog.String("error", err.Error()))...)
			case status >= 500:
				c.LogError("request", attrs...)
			case status >= 400:
				c.LogWarn("request", attrs...)
			default:
				c.LogInfo("request", attrs...)
			}

			return err
		}
	}
}
