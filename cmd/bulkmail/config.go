package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/bulkmail/handlers"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/cookie"
	"github.com/dmitrymomot/bulkmail/pkg/logger"
	"github.com/dmitrymomot/bulkmail/pkg/mailer/resend"
	"github.com/dmitrymomot/bulkmail/pkg/redis"
	"github.com/dmitrymomot/bulkmail/pkg/storage"
	"github.com/dmitrymomot/bulkmail/pkg/subscription"
)

// Config is the whole application configuration, read from the environment.
type Config struct {
	Address         string        `env:"ADDRESS" envDefault:":8080"`
	AppEnv          string        `env:"APP_ENV" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	APITimeout      time.Duration `env:"API_TIMEOUT" envDefault:"30s"`

	Logger       logger.Config
	Sentry       logger.SentryConfig
	Cookie       cookie.Config
	Redis        redis.Config
	Storage      storage.Config
	Subscription subscription.Config
	Resend       resend.Config
	Campaign     campaign.Config
	Recipients   handlers.RecipientsConfig
}

// loadConfig reads an optional .env file and parses the environment.
func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
