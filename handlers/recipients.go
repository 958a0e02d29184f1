package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/bulkmail"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/roster"
	"github.com/dmitrymomot/bulkmail/pkg/session"
	"github.com/dmitrymomot/bulkmail/pkg/storage"
	"github.com/dmitrymomot/bulkmail/views"
)

// DefaultUploadMaxBytes caps a recipients file when RecipientsConfig leaves it unset.
const DefaultUploadMaxBytes = 10 << 20

const (
	uploadField   = "recipients"
	archivePrefix = "recipients"
)

// RecipientsConfig configures recipient uploads.
type RecipientsConfig struct {
	MaxBytes int64 `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
}

// Recipients loads recipient files and serves the recipients table.
// Uploads are archived to storage when the app has one, so a reset can
// reload the original file.
type Recipients struct {
	runs RunTracker
	cfg  RecipientsConfig
}

// NewRecipients creates a recipients handler.
func NewRecipients(runs RunTracker, cfg RecipientsConfig) *Recipients {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultUploadMaxBytes
	}
	return &Recipients{runs: runs, cfg: cfg}
}

// Routes implements bulkmail.Handler.
func (h *Recipients) Routes(r bulkmail.Router) {
	r.Route("/recipients", func(r bulkmail.Router) {
		r.GET("/", h.table)
		r.POST("/upload", h.upload)
		r.POST("/reset", h.reset)
	})
}

// table renders the recipients table. A poll that observes the end of a run
// also swaps in the final status banner.
func (h *Recipients) table(c bulkmail.Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}

	running := h.runs.Running(sess.ID)
	data := views.RecipientsOf(sess, running)

	if !c.IsHTMX() {
		return c.Redirect(http.StatusSeeOther, "/?tab="+views.TabRecipients)
	}
	if c.Query("poll") != "" && !running && sess.Run != nil && !sess.Running() {
		return c.Render(http.StatusOK, views.RecipientsTable(data),
			oobBanner(views.RunBanner(sess.Run)))
	}
	return c.Render(http.StatusOK, views.RecipientsTable(data))
}

// upload validates and parses the posted file and replaces the recipient list.
func (h *Recipients) upload(c bulkmail.Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if err := guardIdle(h.runs, sess); err != nil {
		return err
	}

	file, fh, err := c.FormFile(uploadField)
	if err != nil {
		return bulkmail.ErrUnprocessable(campaign.MsgNoRecipients,
			bulkmail.WithField(uploadField), bulkmail.WithError(err))
	}
	defer file.Close()

	mimeType := storage.DetectMIME(fh)
	if err := storage.ValidateFile(fh, mimeType,
		storage.NotEmpty(),
		storage.MaxSize(h.cfg.MaxBytes),
		storage.SpreadsheetsOnly(),
	); err != nil {
		return err
	}

	rows, err := roster.Parse(file, fh.Filename)
	if err != nil {
		return parseError(err)
	}

	upload := &session.Upload{
		Filename:   fh.Filename,
		Size:       fh.Size,
		UploadedAt: time.Now(),
	}
	if key, ok := h.archive(c, sess, file, fh.Size, mimeType); ok {
		upload.Key = key
	}

	sess.LoadRecipients(rows, upload)
	c.LogInfo("recipients loaded",
		slog.String("filename", fh.Filename),
		slog.Int("rows", len(rows)),
		slog.Bool("archived", upload.Key != ""),
	)

	return renderTable(c, http.StatusOK, views.RecipientsOf(sess, false),
		views.Success(fmt.Sprintf("Loaded %d recipients from %s", len(rows), fh.Filename)))
}

// reset makes every recipient pending again. Rows are reloaded from the
// archived upload when there is one, and from the session otherwise.
func (h *Recipients) reset(c bulkmail.Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if err := guardIdle(h.runs, sess); err != nil {
		return err
	}

	if sess.Recipients == nil || sess.Recipients.Len() == 0 {
		return &campaign.ValidationError{Field: uploadField, Message: campaign.MsgNoRecipients}
	}

	if rows, ok := h.restore(c, sess); ok {
		sess.LoadRecipients(rows, sess.Upload)
	} else {
		sess.ResetStatuses()
	}

	return renderTable(c, http.StatusOK, views.RecipientsOf(sess, false),
		views.Success("Recipient statuses reset"))
}

// archive stores the uploaded file. Failures are logged and the upload is
// kept without an archive.
func (h *Recipients) archive(c bulkmail.Context, sess *session.Session, file io.ReadSeeker, size int64, mimeType string) (string, bool) {
	if _, err := c.Storage(); err != nil {
		return "", false
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.LogWarn("rewind upload failed", slog.Any("error", err))
		return "", false
	}

	info, err := c.Upload(file, size,
		storage.WithPrefix(archivePrefix),
		storage.WithTenant(sess.ID),
		storage.WithContentType(mimeType),
	)
	if err != nil {
		c.LogWarn("archive upload failed", slog.Any("error", err))
		return "", false
	}
	return info.Key, true
}

// restore re-reads the archived upload.
func (h *Recipients) restore(c bulkmail.Context, sess *session.Session) ([]roster.Row, bool) {
	if !hasArchive(c, sess) {
		return nil, false
	}

	rc, err := c.Download(sess.Upload.Key)
	if err != nil {
		c.LogWarn("archived upload unavailable", slog.String("key", sess.Upload.Key), slog.Any("error", err))
		return nil, false
	}
	defer rc.Close()

	rows, err := roster.Parse(rc, sess.Upload.Filename)
	if err != nil {
		c.LogWarn("archived upload unreadable", slog.String("key", sess.Upload.Key), slog.Any("error", err))
		return nil, false
	}
	return rows, true
}

// parseError turns a roster error into a message the user can act on.
func parseError(err error) error {
	switch {
	case errors.Is(err, roster.ErrUnsupportedFormat):
		return bulkmail.ErrUnprocessable("Only .xlsx and .csv files are supported", bulkmail.WithField(uploadField), bulkmail.WithError(err))
	case errors.Is(err, roster.ErrMissingColumn):
		return bulkmail.ErrUnprocessable("The file must have Name and Email columns", bulkmail.WithField(uploadField), bulkmail.WithError(err))
	default:
		return bulkmail.ErrUnprocessable("The file could not be read", bulkmail.WithField(uploadField), bulkmail.WithError(err))
	}
}
