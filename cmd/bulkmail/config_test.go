package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bulkmail/handlers"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Address)
	require.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, int64(handlers.DefaultUploadMaxBytes), cfg.Recipients.MaxBytes)
	require.Equal(t, 10*time.Second, cfg.Subscription.Timeout)
	require.Equal(t, campaign.FormatHTML, cfg.Campaign.BodyFormat)
	require.Equal(t, "us-east-1", cfg.Storage.Region)
	require.False(t, cfg.Redis.Enabled())
	require.False(t, cfg.Storage.Enabled())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("ADDRESS", ":9090")
	t.Setenv("UPLOAD_MAX_BYTES", "2048")
	t.Setenv("UNSUBSCRIBE_URL", "https://example.com/unsubscribe?email")
	t.Setenv("MAIL_BODY_FORMAT", "text")
	t.Setenv("RESEND_FROM_EMAIL", "news@example.com")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STORAGE_BUCKET", "uploads")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := loadConfig()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Address)
	require.Equal(t, int64(2048), cfg.Recipients.MaxBytes)
	require.Equal(t, "https://example.com/unsubscribe?email", cfg.Campaign.UnsubscribeURL)
	require.Equal(t, campaign.FormatText, cfg.Campaign.BodyFormat)
	require.Equal(t, "news@example.com", cfg.Resend.FromEmail)
	require.True(t, cfg.Redis.Enabled())
	require.True(t, cfg.Storage.Enabled())
	require.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")

	_, err := loadConfig()
	require.Error(t, err)
}
