package session

import (
	"errors"
	"time"

	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/roster"
)

// Draft is the composer form as last saved by the user.
type Draft struct {
	campaign.Compose
	SingleName  string `json:"single_name,omitempty"`
	SingleEmail string `json:"single_email,omitempty"`
}

// Upload describes the recipients file the current list was loaded from.
// Key is empty when the file was not archived.
type Upload struct {
	UploadedAt time.Time `json:"uploaded_at"`
	Key        string    `json:"key,omitempty"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
}

// RunState tracks the latest batch run of the session.
type RunState struct {
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at,omitzero"`
	Report     *campaign.Report `json:"report,omitempty"`
	ID         string           `json:"id"`
	Status     string           `json:"status,omitempty"`
	Error      string           `json:"error,omitempty"`
	Running    bool             `json:"running"`
}

// Failed reports whether the run ended with an error.
func (r *RunState) Failed() bool {
	return r != nil && r.Error != ""
}

// Session is the per-browser workspace: the compose draft, the loaded recipients
// and the state of the latest run.
type Session struct {
	CreatedAt    time.Time     `json:"created_at"`
	LastActiveAt time.Time     `json:"last_active_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Recipients   *roster.Store `json:"recipients"`
	Upload       *Upload       `json:"upload,omitempty"`
	Run          *RunState     `json:"run,omitempty"`
	Draft        Draft         `json:"draft"`
	ID           string        `json:"id"`
	Token        string        `json:"token"`

	dirty bool
	isNew bool
}

// New creates an empty session.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Recipients:   roster.NewStore(),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// SetDraft replaces the compose draft.
func (s *Session) SetDraft(d Draft) {
	s.Draft = d
	s.dirty = true
}

// Batch returns the draft compose paired with the session recipients.
// The returned batch shares the recipient store with the session.
func (s *Session) Batch() *campaign.Batch {
	return &campaign.Batch{Compose: s.Draft.Compose, Recipients: s.recipients()}
}

// LoadRecipients replaces the recipient list. Every row starts pending and the
// result of any previous run is cleared.
func (s *Session) LoadRecipients(rows []roster.Row, upload *Upload) {
	s.recipients().Load(rows)
	s.Upload = upload
	s.Run = nil
	s.dirty = true
}

// ResetStatuses makes every loaded recipient pending again.
func (s *Session) ResetStatuses() {
	store := s.recipients()
	store.Load(store.Rows())
	s.Run = nil
	s.dirty = true
}

// BeginRun records that a batch run with id started at now.
func (s *Session) BeginRun(id string, now time.Time) {
	s.Run = &RunState{ID: id, Running: true, StartedAt: now}
	s.dirty = true
}

// FinishRun records the outcome of the current run.
func (s *Session) FinishRun(report *campaign.Report, err error, now time.Time) {
	if s.Run == nil {
		s.Run = &RunState{StartedAt: now}
	}
	s.Run.Running = false
	s.Run.FinishedAt = now
	s.Run.Report = report

	switch {
	case err != nil && errors.Is(err, campaign.ErrProcessing):
		s.Run.Status = campaign.MsgProcessingError
		s.Run.Error = err.Error()
	case err != nil:
		s.Run.Status = err.Error()
		s.Run.Error = err.Error()
	case report != nil:
		s.Run.Status = report.Status
		s.Run.Error = ""
	}
	s.dirty = true
}

// Running reports whether a batch run is in progress.
func (s *Session) Running() bool {
	return s.Run != nil && s.Run.Running
}

// Clone returns a deep copy. The clone shares nothing with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Recipients = s.recipients().Clone()
	if s.Upload != nil {
		u := *s.Upload
		c.Upload = &u
	}
	if s.Run != nil {
		r := *s.Run
		if s.Run.Report != nil {
			rep := *s.Run.Report
			r.Report = &rep
		}
		c.Run = &r
	}
	return &c
}

// IsDirty returns true if the session has unsaved changes.
func (s *Session) IsDirty() bool {
	return s.dirty
}

// ClearDirty marks the session as saved.
func (s *Session) ClearDirty() {
	s.dirty = false
}

// MarkDirty marks the session as needing to be saved.
func (s *Session) MarkDirty() {
	s.dirty = true
}

// IsNew returns true if the session was just created.
func (s *Session) IsNew() bool {
	return s.isNew
}

// ClearNew marks the session as persisted.
func (s *Session) ClearNew() {
	s.isNew = false
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *Session) recipients() *roster.Store {
	if s.Recipients == nil {
		s.Recipients = roster.NewStore()
	}
	return s.Recipients
}
