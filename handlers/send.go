package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bulkmail"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/mailer"
	"github.com/dmitrymomot/bulkmail/pkg/session"
	"github.com/dmitrymomot/bulkmail/views"
)

// SingleSender delivers one message. *campaign.Processor implements it.
type SingleSender interface {
	SendSingle(ctx context.Context, compose campaign.Compose, name, email string) (*mailer.Receipt, error)
}

// BatchRunner starts background batch runs. *campaign.Runner implements it.
type BatchRunner interface {
	RunTracker
	Start(ctx context.Context, key string, batch *campaign.Batch, done func(*campaign.Report, error), opts ...campaign.RunOption) error
}

// Send starts batch runs and single sends.
type Send struct {
	single SingleSender
	runner BatchRunner
	store  session.Store
}

// NewSend creates a send handler. store receives the progress of background runs.
func NewSend(single SingleSender, runner BatchRunner, store session.Store) *Send {
	return &Send{single: single, runner: runner, store: store}
}

// Routes implements bulkmail.Handler.
func (h *Send) Routes(r bulkmail.Router) {
	r.Route("/send", func(r bulkmail.Router) {
		r.POST("/", h.batch)
		r.POST("/single", h.one)
	})
}

// batch saves the posted draft and starts a run over the loaded recipients.
// The run works on a copy of the session and persists it after every
// recipient, so the table poll sees progress.
func (h *Send) batch(c bulkmail.Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if err := guardIdle(h.runner, sess); err != nil {
		return err
	}

	sess.SetDraft(draftFromForm(c))
	batch := sess.Batch()
	if err := batch.Validate(); err != nil {
		return err
	}

	runID := uuid.NewString()
	previous := sess.Run
	sess.BeginRun(runID, time.Now())
	if err := c.SaveSession(); err != nil {
		return err
	}

	log := c.Logger().With(slog.String("session_id", sess.ID), slog.String("run_id", runID))
	run := sess.Clone()
	persist := func(ctx context.Context) {
		run.LastActiveAt = time.Now()
		if err := h.store.Update(ctx, run); err != nil {
			log.WarnContext(ctx, "run progress not saved", slog.Any("error", err))
		}
	}

	ctx := context.WithoutCancel(c.Context())
	err = h.runner.Start(ctx, sess.ID, run.Batch(),
		func(report *campaign.Report, err error) {
			run.FinishRun(report, err, time.Now())
			persist(ctx)
		},
		campaign.WithRunID(runID),
		campaign.WithObserver(func(campaign.Event) { persist(ctx) }),
	)
	if err != nil {
		sess.Run = previous
		sess.MarkDirty()
		if errors.Is(err, campaign.ErrRunInProgress) {
			return bulkmail.ErrConflict(msgRunInProgress, bulkmail.WithError(err))
		}
		return err
	}

	return renderBanner(c, http.StatusOK, views.RunBanner(sess.Run), views.TabRecipients,
		views.RecipientsOf(sess, true))
}

// one sends the draft to the single recipient in the form. The unsubscribe
// list is not consulted.
func (h *Send) one(c bulkmail.Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if err := guardIdle(h.runner, sess); err != nil {
		return err
	}

	draft := draftFromForm(c)
	sess.SetDraft(draft)

	_, err = h.single.SendSingle(c.Context(), draft.Compose, draft.SingleName, draft.SingleEmail)
	var de *campaign.DeliveryError
	switch {
	case errors.As(err, &de):
		c.LogWarn("single send failed", slog.String("email", draft.SingleEmail), slog.Any("error", err))
		return renderBanner(c, http.StatusBadGateway,
			views.Failure(campaign.SingleFailedMessage(draft.SingleEmail)), views.TabCompose)
	case err != nil:
		return err
	}

	return renderBanner(c, http.StatusOK,
		views.Success(campaign.SingleSentMessage(draft.SingleEmail)), views.TabCompose)
}
