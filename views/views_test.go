package views_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/roster"
	"github.com/dmitrymomot/bulkmail/pkg/session"
	"github.com/dmitrymomot/bulkmail/views"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func newSession(t *testing.T) *session.Session {
	t.Helper()

	sess := session.New("s1", "token", time.Now().Add(time.Hour))
	sess.LoadRecipients([]roster.Row{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	}, &session.Upload{Filename: "list.csv", Size: 2048})
	require.NoError(t, sess.Recipients.UpdateStatus(1, roster.StatusFailed, errors.New("mailbox full")))
	return sess
}

func TestPage(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the compose tab", func(t *testing.T) {
		t.Parallel()

		out := render(t, views.Page(views.PageData{
			Draft: session.Draft{
				Compose:    campaign.Compose{From: "news@example.com", Subject: "Spring", Body: "<p>Hi</p>"},
				SingleName: "Ann",
			},
		}))

		require.Contains(t, out, "<!DOCTYPE html>")
		require.Contains(t, out, `href="/static/app.css"`)
		require.Contains(t, out, `<a href="/?tab=compose" class="active">Compose</a>`)
		require.Contains(t, out, `id="panel-recipients" hidden`)
		require.Contains(t, out, `value="news@example.com"`)
		require.Contains(t, out, "&lt;p&gt;Hi&lt;/p&gt;")
		require.Contains(t, out, `value="Ann"`)
		require.Contains(t, out, "Single sends do not check the unsubscribe list.")
		require.Contains(t, out, `id="status"`)
	})

	t.Run("recipients tab", func(t *testing.T) {
		t.Parallel()

		out := render(t, views.Page(views.PageData{
			Tab:        views.TabRecipients,
			Recipients: views.RecipientsOf(newSession(t), false),
			Banner:     views.Success("Loaded").AsOOB(),
		}))

		require.Contains(t, out, `<a href="/?tab=recipients" class="active">Recipients</a>`)
		require.Contains(t, out, `id="panel-compose" hidden`)
		require.Contains(t, out, "ann@example.com")
		require.NotContains(t, out, "hx-swap-oob")
	})

	t.Run("unknown tab falls back to compose", func(t *testing.T) {
		t.Parallel()

		out := render(t, views.Page(views.PageData{Tab: "other"}))
		require.Contains(t, out, `<a href="/?tab=compose" class="active">Compose</a>`)
	})
}

func TestRecipientsTable(t *testing.T) {
	t.Parallel()

	t.Run("rows and counts", func(t *testing.T) {
		t.Parallel()

		out := render(t, views.RecipientsTable(views.RecipientsOf(newSession(t), false)))

		require.Contains(t, out, `<section id="recipients" class="recipients">`)
		require.Contains(t, out, "list.csv (2.0 KB)")
		require.Contains(t, out, "Total 2")
		require.Contains(t, out, "Pending 1")
		require.Contains(t, out, "Failed 1")
		require.Contains(t, out, `<tr class="status-pending">`)
		require.Contains(t, out, `<tr class="status-failed">`)
		require.Contains(t, out, `title="mailbox full"`)
		require.Contains(t, out, "<td>2</td>")
		require.NotContains(t, out, "hx-trigger")
	})

	t.Run("polls while running", func(t *testing.T) {
		t.Parallel()

		r := views.RecipientsOf(newSession(t), true)
		r.OOB = true
		out := render(t, views.RecipientsTable(r))

		require.Contains(t, out, `hx-swap-oob="true"`)
		require.Contains(t, out, `hx-get="/recipients?poll=1"`)
		require.Contains(t, out, `hx-trigger="every 2s"`)
		require.Contains(t, out, "Sending emails")
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()

		sess := session.New("s2", "token", time.Now().Add(time.Hour))
		out := render(t, views.RecipientsTable(views.RecipientsOf(sess, false)))
		require.Contains(t, out, "No recipients loaded.")
		require.NotContains(t, out, "<table>")
	})

	t.Run("escapes recipient fields", func(t *testing.T) {
		t.Parallel()

		sess := session.New("s3", "token", time.Now().Add(time.Hour))
		sess.LoadRecipients([]roster.Row{{Name: "<b>Eve</b>", Email: "eve@example.com"}}, nil)
		out := render(t, views.RecipientsTable(views.RecipientsOf(sess, false)))
		require.Contains(t, out, "&lt;b&gt;Eve&lt;/b&gt;")
	})
}

func TestStatusBanner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		banner views.Banner
		want   []string
	}{
		{
			name:   "success",
			banner: views.Success(campaign.MsgAllProcessed),
			want:   []string{`class="banner banner-success"`, campaign.MsgAllProcessed},
		},
		{
			name:   "error out of band",
			banner: views.Failure(campaign.MsgFromRequired).AsOOB(),
			want:   []string{`class="banner banner-error"`, `hx-swap-oob="true"`, campaign.MsgFromRequired},
		},
		{
			name:   "empty placeholder",
			banner: views.Banner{},
			want:   []string{`<div id="status" class="banner" role="status"></div>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := render(t, views.StatusBanner(tt.banner))
			for _, w := range tt.want {
				require.Contains(t, out, w)
			}
		})
	}
}

func TestRunBanner(t *testing.T) {
	t.Parallel()

	require.Equal(t, views.Banner{}, views.RunBanner(nil))
	require.Equal(t, views.BannerInfo, views.RunBanner(&session.RunState{Running: true}).Kind)
	require.Equal(t,
		views.Failure(campaign.MsgProcessingError),
		views.RunBanner(&session.RunState{Status: campaign.MsgProcessingError, Error: "fetch failed"}),
	)
	require.Equal(t,
		views.Success(campaign.MsgAllProcessed),
		views.RunBanner(&session.RunState{Status: campaign.MsgAllProcessed}),
	)
}

func TestErrorPage(t *testing.T) {
	t.Parallel()

	out := render(t, views.ErrorPage(404, "Not Found"))
	require.Contains(t, out, "<h1>404</h1>")
	require.Contains(t, out, "<p>Not Found</p>")
	require.Contains(t, out, `<a href="/">Back to composer</a>`)
}

func TestAssets(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(views.Assets, "static/app.css")
	require.NoError(t, err)
	require.Contains(t, string(data), ".banner")
}
