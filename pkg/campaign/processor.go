package campaign

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bulkmail/pkg/logger"
	"github.com/dmitrymomot/bulkmail/pkg/mailer"
	"github.com/dmitrymomot/bulkmail/pkg/roster"
	"github.com/dmitrymomot/bulkmail/pkg/subscription"
)

// Subscriptions provides the set of addresses that must not be mailed.
type Subscriptions interface {
	FetchUnsubscribed(ctx context.Context) (subscription.Set, error)
}

// Deliverer sends one message. *Dispatcher implements it.
type Deliverer interface {
	Send(ctx context.Context, msg Message) (*mailer.Receipt, error)
}

// Outcome is what a run did with one recipient.
type Outcome string

const (
	OutcomeSent             Outcome = "sent"
	OutcomeFailed           Outcome = "failed"
	OutcomeUnsubscribed     Outcome = "unsubscribed"
	OutcomeAlreadyProcessed Outcome = "already_processed"
)

// Event is emitted for every recipient a run visits, after the store is updated.
type Event struct {
	Err     error
	RunID   string
	Name    string
	Email   string
	Outcome Outcome
	Row     int
}

// Report summarises a finished run.
type Report struct {
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	RunID            string    `json:"run_id"`
	Status           string    `json:"status"`
	Total            int       `json:"total"`
	Attempted        int       `json:"attempted"`
	Sent             int       `json:"sent"`
	Failed           int       `json:"failed"`
	Unsubscribed     int       `json:"unsubscribed"`
	AlreadyProcessed int       `json:"already_processed"`
}

// Processor runs batches and single sends.
type Processor struct {
	subscriptions Subscriptions
	deliverer     Deliverer
	logger        *slog.Logger
	now           func() time.Time
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the processor logger.
func WithLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProcessor creates a processor.
func NewProcessor(subs Subscriptions, deliverer Deliverer, opts ...ProcessorOption) *Processor {
	p := &Processor{
		subscriptions: subs,
		deliverer:     deliverer,
		logger:        logger.NewNope(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type runConfig struct {
	runID     string
	observers []func(Event)
}

// RunOption configures a single run.
type RunOption func(*runConfig)

// WithRunID sets the run identifier. A random UUID is used otherwise.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		if id != "" {
			c.runID = id
		}
	}
}

// WithObserver registers fn to receive an Event for every visited recipient.
// Observers run synchronously on the run goroutine.
func WithObserver(fn func(Event)) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// Run sends the batch compose to every eligible recipient, one at a time, in store order.
//
// A *ValidationError is returned before anything is fetched or sent. If the unsubscribed
// set cannot be fetched the error wraps ErrProcessing and no recipient is touched.
// Otherwise every pending, subscribed recipient is attempted once and its status recorded;
// individual failures are reported in the store and the Report, never as an error.
//
// Once validation passes the run ignores ctx cancellation and finishes the list.
func (p *Processor) Run(ctx context.Context, batch *Batch, opts ...RunOption) (*Report, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	rc := runConfig{runID: uuid.NewString()}
	for _, opt := range opts {
		opt(&rc)
	}

	ctx = context.WithoutCancel(ctx)
	log := p.logger.With(slog.String("run_id", rc.runID))

	report := &Report{
		RunID:     rc.runID,
		Total:     batch.Recipients.Len(),
		StartedAt: p.now(),
	}

	unsubscribed, err := p.subscriptions.FetchUnsubscribed(ctx)
	if err != nil {
		log.ErrorContext(ctx, "fetch unsubscribed list failed", slog.Any("error", err))
		return nil, errors.Join(ErrProcessing, err)
	}

	log.InfoContext(ctx, "batch run started",
		slog.Int("recipients", report.Total),
		slog.Int("unsubscribed", len(unsubscribed)),
	)

	for _, r := range batch.Recipients.All() {
		ev := Event{RunID: rc.runID, Row: r.Row, Name: r.Name, Email: r.Email}

		switch {
		case r.Status.Processed():
			ev.Outcome = OutcomeAlreadyProcessed
			report.AlreadyProcessed++
		case unsubscribed.Contains(r.Email):
			ev.Outcome = OutcomeUnsubscribed
			report.Unsubscribed++
		default:
			report.Attempted++
			ev.Outcome, ev.Err = p.deliver(ctx, batch, r, rc.runID)
			if ev.Outcome == OutcomeSent {
				report.Sent++
			} else {
				report.Failed++
			}
		}

		for _, fn := range rc.observers {
			fn(ev)
		}
	}

	report.Status = MsgAllProcessed
	report.FinishedAt = p.now()

	log.InfoContext(ctx, "batch run finished",
		slog.Int("attempted", report.Attempted),
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
		slog.Int("unsubscribed", report.Unsubscribed),
		slog.Int("already_processed", report.AlreadyProcessed),
	)
	return report, nil
}

func (p *Processor) deliver(ctx context.Context, batch *Batch, r roster.Recipient, runID string) (Outcome, error) {
	_, err := p.deliverer.Send(ctx, Message{
		ToEmail: r.Email,
		ToName:  r.Name,
		From:    batch.Compose.From,
		Subject: batch.Compose.Subject,
		Body:    batch.Compose.Body,
		RunID:   runID,
	})

	outcome, status := OutcomeSent, roster.StatusSent
	if err != nil {
		err = deliveryError(r.Email, err)
		outcome, status = OutcomeFailed, roster.StatusFailed
	}

	if uerr := batch.Recipients.UpdateStatus(r.Row, status, err); uerr != nil {
		p.logger.WarnContext(ctx, "recipient status not recorded",
			slog.Int("row", r.Row),
			slog.String("email", r.Email),
			slog.Any("error", uerr),
		)
	}
	return outcome, err
}

// SendSingle delivers compose to one address.
//
// The unsubscribed set is not consulted and no store is touched, so an address that
// has unsubscribed still receives the message.
func (p *Processor) SendSingle(ctx context.Context, compose Compose, name, email string) (*mailer.Receipt, error) {
	if err := compose.Validate(); err != nil {
		return nil, err
	}
	if err := validateSingle(name, email); err != nil {
		return nil, err
	}

	receipt, err := p.deliverer.Send(ctx, Message{
		ToEmail: email,
		ToName:  name,
		From:    compose.From,
		Subject: compose.Subject,
		Body:    compose.Body,
	})
	if err != nil {
		return nil, deliveryError(email, err)
	}
	if receipt == nil {
		receipt = &mailer.Receipt{}
	}

	p.logger.InfoContext(ctx, "single email sent",
		slog.String("email", email),
		slog.String("message_id", receipt.ID),
	)
	return receipt, nil
}
