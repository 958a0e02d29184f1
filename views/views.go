// Package views renders the composer pages and their htmx partials.
//
// Every constructor returns a templ.Component backed by the embedded html/template
// files, so handlers render views the same way whether the response is a full page
// or a fragment.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/bulkmail/pkg/roster"
	"github.com/dmitrymomot/bulkmail/pkg/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Assets holds the stylesheet under static/.
//
//go:embed static
var Assets embed.FS

// Tabs of the composer page.
const (
	TabCompose    = "compose"
	TabRecipients = "recipients"
)

// BannerKind selects the style of a status banner.
type BannerKind string

const (
	BannerInfo    BannerKind = "info"
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is the status line shown above the tabs. An empty message renders an
// empty placeholder that later responses swap into.
type Banner struct {
	Message string
	Kind    BannerKind
	OOB     bool
}

// Info, Success and Failure build banners of the matching kind.
func Info(msg string) Banner    { return Banner{Message: msg, Kind: BannerInfo} }
func Success(msg string) Banner { return Banner{Message: msg, Kind: BannerSuccess} }
func Failure(msg string) Banner { return Banner{Message: msg, Kind: BannerError} }

// AsOOB marks the banner for an out-of-band swap.
func (b Banner) AsOOB() Banner {
	b.OOB = true
	return b
}

// RunBanner describes the latest batch run. It is empty when there is none.
func RunBanner(run *session.RunState) Banner {
	switch {
	case run == nil:
		return Banner{}
	case run.Running:
		return Info("Sending emails...")
	case run.Failed():
		return Failure(run.Status)
	default:
		return Success(run.Status)
	}
}

// Recipients is the state of the recipients table.
type Recipients struct {
	Upload  *session.Upload
	Run     *session.RunState
	Items   []roster.Recipient
	Counts  roster.Counts
	Running bool
	OOB     bool
}

// RecipientsOf snapshots the recipients of sess. running turns on polling.
func RecipientsOf(sess *session.Session, running bool) Recipients {
	r := Recipients{Upload: sess.Upload, Run: sess.Run, Running: running}
	if sess.Recipients != nil {
		r.Items = sess.Recipients.All()
		r.Counts = sess.Recipients.Counts()
	}
	return r
}

// PageData is everything the composer page shows.
type PageData struct {
	Draft      session.Draft
	Banner     Banner
	Tab        string
	Recipients Recipients
}

// Page renders the full composer page.
func Page(data PageData) templ.Component {
	if data.Tab != TabRecipients {
		data.Tab = TabCompose
	}
	data.Banner.OOB = false
	data.Recipients.OOB = false
	return component("page", data)
}

// RecipientsTable renders the recipients table partial.
func RecipientsTable(r Recipients) templ.Component {
	return component("recipients", r)
}

// StatusBanner renders the status banner partial.
func StatusBanner(b Banner) templ.Component {
	return component("banner", b)
}

// ErrorPage renders a standalone error page.
func ErrorPage(code int, message string) templ.Component {
	return component("error_page", errorData{Code: code, Message: message})
}

type errorData struct {
	Message string
	Code    int
}

var templates = template.Must(
	template.New("views").Funcs(template.FuncMap{
		"bytes":       formatBytes,
		"statusClass": statusClass,
		"inc":         func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html"),
)

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}

func statusClass(s roster.Status) string {
	if s == roster.StatusPending {
		return "pending"
	}
	return string(s)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMG"[exp])
}
