// Command bulkmail serves the bulk email composer.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/bulkmail"
	"github.com/dmitrymomot/bulkmail/handlers"
	"github.com/dmitrymomot/bulkmail/middlewares"
	"github.com/dmitrymomot/bulkmail/pkg/cache"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/cookie"
	"github.com/dmitrymomot/bulkmail/pkg/logger"
	"github.com/dmitrymomot/bulkmail/pkg/mailer"
	"github.com/dmitrymomot/bulkmail/pkg/mailer/resend"
	"github.com/dmitrymomot/bulkmail/pkg/redis"
	"github.com/dmitrymomot/bulkmail/pkg/session"
	"github.com/dmitrymomot/bulkmail/pkg/storage"
	"github.com/dmitrymomot/bulkmail/pkg/subscription"
	"github.com/dmitrymomot/bulkmail/views"
)

const (
	sessionKeyPrefix = "bulkmail:session:"
	sentryFlushWait  = 2 * time.Second
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.NewWithSentry(cfg.Sentry, cfg.Logger, middlewares.RequestIDExtractor())
	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, log *slog.Logger) error {
	var (
		hooks  []bulkmail.RunOption
		checks []bulkmail.HealthOption
		opts   []bulkmail.Option
	)

	// Sessions live in Redis when it is configured, in memory otherwise.
	var sessions session.Store
	if cfg.Redis.Enabled() {
		client, err := redis.OpenConfig(ctx, cfg.Redis, redis.WithLogger(log))
		if err != nil {
			return err
		}
		sessions = session.NewCacheStore(cache.NewRedis[session.Session](client, nil,
			cache.WithPrefix(sessionKeyPrefix),
			cache.WithRedisDefaultTTL(cfg.SessionTTL),
		))
		checks = append(checks, bulkmail.WithReadinessCheck("redis", redis.Healthcheck(client)))
		hooks = append(hooks, bulkmail.ShutdownHook(redis.Shutdown(client)))
	} else {
		mem := cache.NewMemory[session.Session](cache.WithDefaultTTL(cfg.SessionTTL))
		sessions = session.NewCacheStore(mem)
		hooks = append(hooks, bulkmail.ShutdownHook(func(context.Context) error { return mem.Close() }))
		log.Warn("REDIS_URL is not set, sessions are kept in memory")
	}

	if cfg.Storage.Enabled() {
		s3, err := storage.New(cfg.Storage)
		if err != nil {
			return err
		}
		opts = append(opts, bulkmail.WithStorage(s3))
		checks = append(checks, bulkmail.WithOptionalCheck("storage", s3.Healthcheck()))
	}

	subs := subscription.New(cfg.Subscription, subscription.WithLogger(log))
	checks = append(checks, bulkmail.WithOptionalCheck("subscriptions", subs.Healthcheck()))

	sender := resend.New(cfg.Resend)
	dispatcher := campaign.NewDispatcher(sender, cfg.Campaign, campaign.WithDispatcherLogger(log))
	processor := campaign.NewProcessor(subs, dispatcher, campaign.WithLogger(log))
	runner := campaign.NewRunner(processor, log)

	// The relay only sends pre-built messages, so it needs no templates.
	relay := mailer.New(sender, nil, mailer.Config{})

	opts = append(opts,
		bulkmail.WithCustomLogger(log),
		bulkmail.WithCookies(cookie.NewFromConfig(cfg.Cookie)),
		bulkmail.WithSession(sessions, bulkmail.WithSessionTTL(cfg.SessionTTL)),
		bulkmail.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Logger(middlewares.WithLoggerSkipPaths("/health/live", "/health/ready", "/static/")),
			middlewares.Recover(),
		),
		bulkmail.WithStaticFiles("/static/", views.Assets, "static"),
		bulkmail.WithHandlers(
			handlers.NewComposer(runner),
			handlers.NewRecipients(runner, cfg.Recipients),
			handlers.NewSend(processor, runner, sessions),
			handlers.NewAPI(relay, subs,
				handlers.WithAPITimeout(cfg.APITimeout),
				handlers.WithBodyFormat(cfg.Campaign.BodyFormat),
			),
		),
		bulkmail.WithErrorHandler(handlers.ErrorHandler),
		bulkmail.WithNotFoundHandler(handlers.NotFound),
		bulkmail.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		bulkmail.WithHealthChecks(checks...),
	)

	app := bulkmail.New(opts...)

	// Runs finish before their sessions' backing store goes away.
	hooks = append([]bulkmail.RunOption{
		bulkmail.ShutdownHook(runner.Wait),
	}, hooks...)
	hooks = append(hooks,
		bulkmail.ShutdownHook(logger.FlushSentry(sentryFlushWait)),
		bulkmail.Logger(log),
		bulkmail.ShutdownTimeout(cfg.ShutdownTimeout),
	)

	log.Info("starting bulkmail",
		slog.String("address", cfg.Address),
		slog.String("env", cfg.AppEnv),
		slog.Bool("redis", cfg.Redis.Enabled()),
		slog.Bool("storage", cfg.Storage.Enabled()),
		slog.Bool("sentry", cfg.Sentry.Enabled()),
	)
	return app.Run(cfg.Address, hooks...)
}
