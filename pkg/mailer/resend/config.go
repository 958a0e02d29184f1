package resend

import "github.com/dmitrymomot/bulkmail/pkg/mailer"

// Config holds Resend credentials and the default sender.
// The default sender is used only when a message has no From of its own.
type Config struct {
	APIKey    string `env:"RESEND_API_KEY"`
	FromEmail string `env:"RESEND_FROM_EMAIL"`
	FromName  string `env:"RESEND_FROM_NAME"`
}

// From returns the default sender formatted as "Name <email>".
func (c Config) From() string {
	return mailer.Recipient(c.FromName, c.FromEmail)
}
