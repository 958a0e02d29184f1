package campaign

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	texttemplate "text/template"

	"github.com/dmitrymomot/bulkmail/pkg/logger"
	"github.com/dmitrymomot/bulkmail/pkg/mailer"
	"github.com/dmitrymomot/bulkmail/pkg/sanitizer"
)

//go:embed templates
var templatesFS embed.FS

var textTemplate = texttemplate.Must(texttemplate.ParseFS(templatesFS, "templates/"+messageText))

const (
	messageTemplate = "message.md"
	messageText     = "message.txt"
	messageLayout   = "base.html"

	tagCampaign = "campaign"
	tagRunID    = "run_id"
	kindBulk    = "bulk"
	kindSingle  = "single"
)

// Message is one delivery of a compose to one recipient.
type Message struct {
	ToEmail string
	ToName  string
	From    string
	Subject string
	Body    string

	// RunID tags the message with the batch run it belongs to. Empty for single sends.
	RunID string
}

type messageData struct {
	Name           string
	Body           string
	UnsubscribeURL string
	SubscribeURL   string
}

// Dispatcher renders a Message and hands it to a mailer.Sender.
type Dispatcher struct {
	mailer *mailer.Mailer
	logger *slog.Logger
	cfg    Config
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger used for delivery failures.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher that renders the built-in message template.
func NewDispatcher(sender mailer.Sender, cfg Config, opts ...DispatcherOption) *Dispatcher {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err) // embedded directory always exists
	}

	renderer := mailer.NewRendererWithConfig(sub, mailer.RendererConfig{AllowHTML: true})
	d := &Dispatcher{
		mailer: mailer.New(sender, renderer, mailer.Config{DefaultLayout: messageLayout}),
		logger: logger.NewNope(),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send renders msg and delivers it. The body is sanitized and the name stripped of
// markup before rendering. The plain-text part carries the same values with all
// markup removed. Any failure is returned as a *DeliveryError.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (*mailer.Receipt, error) {
	data := messageData{
		Name:           sanitizer.StripHTML(msg.ToName),
		Body:           htmlBlock(sanitizer.SanitizeHTML(msg.Body)),
		UnsubscribeURL: AddressLink(d.cfg.UnsubscribeURL, msg.ToEmail),
	}
	if d.cfg.SubscribeURL != "" {
		data.SubscribeURL = AddressLink(d.cfg.SubscribeURL, msg.ToEmail)
	}

	text, err := renderText(messageData{
		Name:           sanitizer.PlainText(msg.ToName),
		Body:           sanitizer.PlainText(msg.Body),
		UnsubscribeURL: data.UnsubscribeURL,
		SubscribeURL:   data.SubscribeURL,
	})
	if err != nil {
		return nil, &DeliveryError{Email: msg.ToEmail, Err: err}
	}

	tags := mailer.Tags{tagCampaign: kindSingle}
	if msg.RunID != "" {
		tags[tagCampaign] = kindBulk
		tags[tagRunID] = msg.RunID
	}

	receipt, err := d.mailer.Send(ctx, mailer.SendParams{
		To:       msg.ToEmail,
		From:     msg.From,
		Subject:  msg.Subject,
		Template: messageTemplate,
		Data:     data,
		Headers:  map[string]string{"List-Unsubscribe": "<" + data.UnsubscribeURL + ">"},
		Tags:     tags,
		Text:     text,
		TextOnly: d.cfg.BodyFormat == FormatText,
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "email delivery failed",
			slog.String("email", msg.ToEmail),
			slog.String("run_id", msg.RunID),
			slog.Any("error", err),
		)
		return nil, &DeliveryError{Email: msg.ToEmail, Err: err}
	}
	return receipt, nil
}

func renderText(data messageData) (string, error) {
	var buf bytes.Buffer
	if err := textTemplate.Execute(&buf, data); err != nil {
		return "", errors.Join(mailer.ErrRenderFailed, err)
	}
	return buf.String(), nil
}

// htmlBlock drops blank lines so the body stays one raw HTML block and markdown
// never reinterprets it.
func htmlBlock(body string) string {
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

// AddressLink appends "=" and the address to base. Nothing is escaped.
func AddressLink(base, email string) string {
	return base + "=" + email
}
