package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bulkmail/pkg/cache"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/roster"
	"github.com/dmitrymomot/bulkmail/pkg/session"
)

func newSession() *session.Session {
	return session.New("sess-1", "tok-1", time.Now().Add(time.Hour))
}

func TestSession_New(t *testing.T) {
	t.Parallel()

	sess := newSession()
	require.Equal(t, "sess-1", sess.ID)
	require.Equal(t, "tok-1", sess.Token)
	require.True(t, sess.IsNew())
	require.True(t, sess.IsDirty())
	require.NotNil(t, sess.Recipients)
	require.Equal(t, 0, sess.Recipients.Len())
	require.False(t, sess.Running())
	require.False(t, sess.IsExpired())
}

func TestSession_Draft(t *testing.T) {
	t.Parallel()

	sess := newSession()
	sess.ClearDirty()

	sess.SetDraft(session.Draft{
		Compose:    campaign.Compose{From: "news@example.com", Subject: "Hi", Body: "Hello"},
		SingleName: "Ann",
	})
	require.True(t, sess.IsDirty())

	batch := sess.Batch()
	require.Equal(t, "news@example.com", batch.Compose.From)
	require.Same(t, sess.Recipients, batch.Recipients)
}

func TestSession_LoadAndReset(t *testing.T) {
	t.Parallel()

	sess := newSession()
	sess.LoadRecipients([]roster.Row{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	}, &session.Upload{Filename: "list.xlsx", Size: 42})

	require.Equal(t, 2, sess.Recipients.Len())
	require.Equal(t, "list.xlsx", sess.Upload.Filename)

	require.NoError(t, sess.Recipients.UpdateStatus(0, roster.StatusSent, nil))
	sess.BeginRun("run-1", time.Now())
	sess.FinishRun(&campaign.Report{Status: campaign.MsgAllProcessed}, nil, time.Now())

	sess.ClearDirty()
	sess.ResetStatuses()

	require.True(t, sess.IsDirty())
	require.Nil(t, sess.Run)
	require.Equal(t, roster.Counts{Total: 2, Pending: 2}, sess.Recipients.Counts())
	require.Equal(t, "list.xlsx", sess.Upload.Filename, "reset keeps the upload")
}

func TestSession_RunLifecycle(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		report     *campaign.Report
		err        error
		wantStatus string
		wantFailed bool
	}{
		{
			name:       "completed",
			report:     &campaign.Report{Status: campaign.MsgAllProcessed, Sent: 2},
			wantStatus: "All emails processed",
		},
		{
			name:       "subscription list unavailable",
			err:        errors.Join(campaign.ErrProcessing, errors.New("status 503")),
			wantStatus: "Error processing emails",
			wantFailed: true,
		},
		{
			name:       "validation",
			err:        &campaign.ValidationError{Field: "from", Message: campaign.MsgFromRequired},
			wantStatus: "From Email is required",
			wantFailed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sess := newSession()
			sess.BeginRun("run-1", start)
			require.True(t, sess.Running())
			require.Equal(t, "run-1", sess.Run.ID)

			sess.FinishRun(tt.report, tt.err, start.Add(time.Minute))
			require.False(t, sess.Running())
			require.Equal(t, tt.wantStatus, sess.Run.Status)
			require.Equal(t, tt.wantFailed, sess.Run.Failed())
			require.Equal(t, start.Add(time.Minute), sess.Run.FinishedAt)
		})
	}
}

func TestSession_Clone(t *testing.T) {
	t.Parallel()

	sess := newSession()
	sess.LoadRecipients([]roster.Row{{Name: "Ann", Email: "ann@example.com"}}, &session.Upload{Filename: "a.csv"})
	sess.BeginRun("run-1", time.Now())

	c := sess.Clone()
	require.NoError(t, c.Recipients.UpdateStatus(0, roster.StatusSent, nil))
	c.Upload.Filename = "b.csv"
	c.Run.Running = false

	require.Equal(t, roster.StatusPending, sess.Recipients.All()[0].Status)
	require.Equal(t, "a.csv", sess.Upload.Filename)
	require.True(t, sess.Running())
}

func TestCacheStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := cache.NewMemory[session.Session]()
	t.Cleanup(func() { _ = mem.Close() })
	store := session.NewCacheStore(mem)

	sess := newSession()
	sess.LoadRecipients([]roster.Row{{Name: "Ann", Email: "ann@example.com"}}, nil)
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "sess-1", got.ID)
	require.Equal(t, 1, got.Recipients.Len())
	require.False(t, got.IsDirty())
	require.False(t, got.IsNew())

	// Changes to a loaded copy are invisible until Update.
	require.NoError(t, got.Recipients.UpdateStatus(0, roster.StatusFailed, errors.New("bounced")))
	again, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, roster.StatusPending, again.Recipients.All()[0].Status)

	require.NoError(t, store.Update(ctx, got))
	again, err = store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, roster.StatusFailed, again.Recipients.All()[0].Status)
	require.Equal(t, "bounced", again.Recipients.All()[0].Error)

	require.NoError(t, store.Delete(ctx, "tok-1"))
	_, err = store.Get(ctx, "tok-1")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestCacheStore_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := cache.NewMemory[session.Session]()
	t.Cleanup(func() { _ = mem.Close() })
	store := session.NewCacheStore(mem)

	_, err := store.Get(ctx, "")
	require.ErrorIs(t, err, session.ErrInvalidToken)

	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, session.ErrNotFound)

	expired := session.New("sess-2", "tok-2", time.Now().Add(-time.Minute))
	require.ErrorIs(t, store.Create(ctx, expired), session.ErrExpired)

	require.ErrorIs(t, store.Create(ctx, session.New("sess-3", "", time.Now().Add(time.Hour))), session.ErrInvalidToken)
}

func TestCacheStore_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	sess := newSession()
	sess.SetDraft(session.Draft{Compose: campaign.Compose{From: "news@example.com", Subject: "Hi", Body: "Hello"}})
	sess.LoadRecipients([]roster.Row{{Name: "Ann", Email: "ann@example.com"}}, &session.Upload{Key: "uploads/a.xlsx", Filename: "a.xlsx"})
	require.NoError(t, sess.Recipients.UpdateStatus(0, roster.StatusSent, nil))
	sess.BeginRun("run-1", time.Now())

	m := cache.JSONMarshaler[session.Session]{}
	data, err := m.Marshal(*sess)
	require.NoError(t, err)

	got, err := m.Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, "news@example.com", got.Draft.From)
	require.Equal(t, "uploads/a.xlsx", got.Upload.Key)
	require.True(t, got.Running())
	require.Equal(t, roster.StatusSent, got.Recipients.All()[0].Status)
}
