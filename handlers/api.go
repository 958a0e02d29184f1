package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/bulkmail"
	"github.com/dmitrymomot/bulkmail/middlewares"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/mailer"
)

// RawSender delivers a pre-built email. *mailer.Mailer implements it.
type RawSender interface {
	SendRaw(ctx context.Context, email *mailer.Email) (*mailer.Receipt, error)
}

// DefaultAPITimeout bounds each API request.
const DefaultAPITimeout = 30 * time.Second

const msgInternalError = "Internal server error"

// API exposes the JSON relay to the email provider and the subscription list proxy.
type API struct {
	sender  RawSender
	subs    campaign.Subscriptions
	format  campaign.BodyFormat
	timeout time.Duration
}

// APIOption configures the API handler.
type APIOption func(*API)

// WithAPITimeout sets the per-request timeout of the API routes.
func WithAPITimeout(d time.Duration) APIOption {
	return func(h *API) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithBodyFormat selects whether relayed bodies are sent as HTML or plain text.
func WithBodyFormat(f campaign.BodyFormat) APIOption {
	return func(h *API) {
		if f != "" {
			h.format = f
		}
	}
}

// NewAPI creates the API handler. Bodies are relayed as HTML unless
// WithBodyFormat says otherwise.
func NewAPI(sender RawSender, subs campaign.Subscriptions, opts ...APIOption) *API {
	h := &API{sender: sender, subs: subs, format: campaign.FormatHTML, timeout: DefaultAPITimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes implements bulkmail.Handler.
func (h *API) Routes(r bulkmail.Router) {
	r.Route("/api", func(r bulkmail.Router) {
		r.Use(middlewares.Timeout(h.timeout))
		r.POST("/send-email", h.sendEmail)
		r.GET("/subscribe-emails", h.subscribeEmails)
	})
}

type sendEmailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// sendEmail relays one message to the provider and returns its id.
// Provider failures are returned as is with 502.
func (h *API) sendEmail(c bulkmail.Context) error {
	var req sendEmailRequest
	if err := c.BindJSON(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
	}

	email := &mailer.Email{
		From:    req.From,
		To:      []string{req.To},
		Subject: req.Subject,
	}
	if h.format == campaign.FormatText {
		email.Text = req.Body
	} else {
		email.HTML = req.Body
	}

	receipt, err := h.sender.SendRaw(middlewares.GetTimeoutContext(c), email)
	switch {
	case errors.Is(err, mailer.ErrSendFailed):
		c.LogWarn("relay send failed", "to", req.To, "error", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": providerError(err)})
	case err != nil:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"id": receipt.ID})
}

// subscribeEmails returns the current unsubscribed addresses.
func (h *API) subscribeEmails(c bulkmail.Context) error {
	set, err := h.subs.FetchUnsubscribed(middlewares.GetTimeoutContext(c))
	if err != nil {
		c.LogError("fetch subscription list failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, map[string]any{"emails": set.Emails()})
}

// providerError strips the mailer sentinel from a joined send error.
func providerError(err error) string {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err.Error()
	}
	for _, e := range joined.Unwrap() {
		if !errors.Is(e, mailer.ErrSendFailed) {
			return e.Error()
		}
	}
	return err.Error()
}
