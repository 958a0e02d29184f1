package handlers

import (
	"net/http"

	"github.com/dmitrymomot/bulkmail"
	"github.com/dmitrymomot/bulkmail/views"
)

// Composer serves the composer page and saves drafts.
type Composer struct {
	runs RunTracker
}

// NewComposer creates a composer handler.
func NewComposer(runs RunTracker) *Composer {
	return &Composer{runs: runs}
}

// Routes implements bulkmail.Handler.
func (h *Composer) Routes(r bulkmail.Router) {
	r.GET("/", h.page)
	r.POST("/compose", h.save)
}

// page renders the composer with the draft, the recipients and the latest
// notice: a flash left by a redirect, or else the state of the last run.
func (h *Composer) page(c bulkmail.Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}

	running := h.runs.Running(sess.ID)
	banner := views.RunBanner(sess.Run)
	if !running && sess.Running() {
		banner = views.Banner{}
	}

	var notice views.Banner
	if err := c.Flash(flashNotice, &notice); err == nil {
		banner = notice
	}

	return c.Render(http.StatusOK, views.Page(views.PageData{
		Tab:        c.QueryDefault("tab", views.TabCompose),
		Draft:      sess.Draft,
		Banner:     banner,
		Recipients: views.RecipientsOf(sess, running),
	}))
}

// save stores the composer form in the session.
func (h *Composer) save(c bulkmail.Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if err := guardIdle(h.runs, sess); err != nil {
		return err
	}

	sess.SetDraft(draftFromForm(c))
	return renderBanner(c, http.StatusOK, views.Success("Draft saved"), views.TabCompose)
}
