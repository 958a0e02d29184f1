package mailer

import "context"

// Sender is implemented by email providers.
// It receives a fully prepared Email and hands it to the provider API.
type Sender interface {
	// Send delivers a single message and returns the provider receipt.
	Send(ctx context.Context, email *Email) (*Receipt, error)
}

// Receipt is the opaque provider response for an accepted message.
type Receipt struct {
	ID       string `json:"id"`
	Provider string `json:"provider,omitempty"`
}
