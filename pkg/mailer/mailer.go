package mailer

import (
	"bytes"
	"context"
	"errors"
	texttemplate "text/template"
)

// Mailer renders templates and hands the result to a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	config   Config
}

// New creates a new Mailer with the given sender and renderer.
// Empty Config fields take the package defaults.
func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	return &Mailer{
		sender:   sender,
		renderer: renderer,
		config:   cfg.withDefaults(),
	}
}

// SendParams contains parameters for sending a templated email.
type SendParams struct {
	Data     any
	Headers  map[string]string
	Tags     Tags
	To       string
	Template string

	// Subject is used verbatim. Template metadata subjects are executed
	// against Data; user-supplied subjects never are.
	Subject string
	Layout  string
	From    string
	ReplyTo string

	// Text replaces the plain-text rendition of the template when set.
	Text string

	// TextOnly drops the HTML part and delivers the plain-text rendition.
	TextOnly bool
}

// Send renders a template and sends the resulting message.
// Subject resolution: params.Subject > template metadata > config fallback.
func (m *Mailer) Send(ctx context.Context, params SendParams) (*Receipt, error) {
	if params.To == "" {
		return nil, ErrNoRecipient
	}

	layout := params.Layout
	if layout == "" {
		layout = m.config.DefaultLayout
	}

	result, err := m.renderer.Render(layout, params.Template, params.Data)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	subject := params.Subject
	if subject == "" {
		meta, ok := result.Metadata["Subject"].(string)
		if !ok {
			meta = m.config.FallbackSubject
		}
		subject, err = processSubject(meta, params.Data)
		if err != nil {
			return nil, errors.Join(ErrRenderFailed, err)
		}
	}

	email := &Email{
		To:      []string{params.To},
		Subject: subject,
		HTML:    result.HTML,
		Text:    result.Text,
		From:    params.From,
		ReplyTo: params.ReplyTo,
		Headers: params.Headers,
		Tags:    params.Tags,
	}
	if params.Text != "" {
		email.Text = params.Text
	}
	if params.TextOnly {
		email.HTML = ""
	}

	return m.deliver(ctx, email)
}

// SendRaw sends a pre-built email without template rendering.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) (*Receipt, error) {
	if len(email.To) == 0 || email.To[0] == "" {
		return nil, ErrNoRecipient
	}
	if email.Subject == "" {
		return nil, ErrNoSubject
	}
	if !email.HasContent() {
		return nil, ErrNoContent
	}

	return m.deliver(ctx, email)
}

func (m *Mailer) deliver(ctx context.Context, email *Email) (*Receipt, error) {
	receipt, err := m.sender.Send(ctx, email)
	if err != nil {
		return nil, errors.Join(ErrSendFailed, err)
	}
	if receipt == nil {
		receipt = &Receipt{}
	}
	return receipt, nil
}

func processSubject(subject string, data any) (string, error) {
	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
