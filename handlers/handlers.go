// Package handlers implements the composer pages and the JSON API.
package handlers

import (
	"net/http"

	"github.com/dmitrymomot/bulkmail"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/htmx"
	"github.com/dmitrymomot/bulkmail/pkg/session"
	"github.com/dmitrymomot/bulkmail/views"
)

// RunTracker reports whether a batch run is in progress for a session.
// *campaign.Runner implements it.
type RunTracker interface {
	Running(key string) bool
}

const msgRunInProgress = "A send is in progress, wait until it finishes"

// flashNotice is the flash key of the banner shown after a redirect.
const flashNotice = "notice"

// guardIdle rejects changes to a session whose batch run has not finished.
// The run goroutine persists its own copy of the session, so a concurrent
// write would be overwritten.
func guardIdle(runs RunTracker, sess *session.Session) error {
	if runs.Running(sess.ID) {
		return bulkmail.ErrConflict(msgRunInProgress, bulkmail.WithError(campaign.ErrRunInProgress))
	}
	return nil
}

// draftFromForm reads the composer form.
func draftFromForm(c bulkmail.Context) session.Draft {
	return session.Draft{
		Compose: campaign.Compose{
			From:    c.Form("from"),
			Subject: c.Form("subject"),
			Body:    c.Form("body"),
		},
		SingleName:  c.Form("single_name"),
		SingleEmail: c.Form("single_email"),
	}
}

// renderBanner answers a form post. htmx requests get the banner plus any
// out-of-band partials. Other requests are redirected to tab with the banner
// kept as a flash, when flash cookies are available.
func renderBanner(c bulkmail.Context, code int, b views.Banner, tab string, oob ...views.Recipients) error {
	if !c.IsHTMX() {
		if err := c.SetFlash(flashNotice, b); err != nil {
			c.LogDebug("flash not stored", "error", err)
		}
		return c.Redirect(http.StatusSeeOther, "/?tab="+tab)
	}

	opts := make([]htmx.RenderOption, 0, len(oob))
	for _, r := range oob {
		r.OOB = true
		opts = append(opts, htmx.WithOOB(views.RecipientsTable(r)))
	}
	return c.Render(code, views.StatusBanner(b), opts...)
}

// renderTable answers a recipients form post with the table and an
// out-of-band banner.
func renderTable(c bulkmail.Context, code int, r views.Recipients, b views.Banner) error {
	if !c.IsHTMX() {
		if err := c.SetFlash(flashNotice, b); err != nil {
			c.LogDebug("flash not stored", "error", err)
		}
		return c.Redirect(http.StatusSeeOther, "/?tab="+views.TabRecipients)
	}
	return c.Render(code, views.RecipientsTable(r), oobBanner(b))
}

func oobBanner(b views.Banner) htmx.RenderOption {
	return htmx.WithOOB(views.StatusBanner(b.AsOOB()))
}

// hasArchive reports whether the app can reach the archived upload of sess.
func hasArchive(c bulkmail.Context, sess *session.Session) bool {
	if sess.Upload == nil || sess.Upload.Key == "" {
		return false
	}
	_, err := c.Storage()
	return err == nil
}
