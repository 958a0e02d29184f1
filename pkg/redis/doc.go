// Package redis opens go-redis clients with retry on startup and exposes
// readiness and shutdown hooks for them.
//
//	client, err := redis.OpenConfig(ctx, cfg.Redis, redis.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	app := bulkmail.New(bulkmail.WithHealthChecks(bulkmail.WithReadinessCheck("redis", redis.Healthcheck(client))))
//	_ = app.Run(bulkmail.WithShutdownHook(redis.Shutdown(client)))
//
// Only redis:// and rediss:// URLs are accepted.
package redis
