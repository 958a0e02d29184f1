package roster

import (
	"encoding/json"
	"sync"
)

// Status is the delivery state of a recipient.
type Status string

const (
	StatusPending Status = ""
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Label is the human-readable form of the status.
func (s Status) Label() string {
	if s == StatusPending {
		return "Pending"
	}
	return string(s)
}

// Processed reports whether a run already attempted this recipient.
func (s Status) Processed() bool {
	return s != StatusPending
}

func (s Status) valid() bool {
	return s == StatusPending || s == StatusSent || s == StatusFailed
}

// Row is a raw name/email pair as read from an upload.
type Row struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Recipient is a row of the loaded list with its delivery status.
type Recipient struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status Status `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
	Row    int    `json:"row"`
}

// Counts summarises the statuses in a Store.
type Counts struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

// Store is the ordered recipient list. It is safe for concurrent use.
type Store struct {
	items []Recipient
	mu    sync.RWMutex
}

// NewStore creates a store loaded with rows.
func NewStore(rows ...Row) *Store {
	s := &Store{}
	s.Load(rows)
	return s
}

// Load replaces the whole list. Every recipient starts pending and rows are
// numbered from zero in input order.
func (s *Store) Load(rows []Row) {
	items := make([]Recipient, len(rows))
	for i, r := range rows {
		items[i] = Recipient{Row: i, Name: r.Name, Email: r.Email}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// UpdateStatus sets the status of the recipient at row.
// A non-nil err is kept as the recipient's error text; it is cleared otherwise.
func (s *Store) UpdateStatus(row int, status Status, err error) error {
	if !status.valid() {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if row < 0 || row >= len(s.items) {
		return ErrRowNotFound
	}

	s.items[row].Status = status
	s.items[row].Error = ""
	if err != nil {
		s.items[row].Error = err.Error()
	}
	return nil
}

// UpdateStatusByEmail sets the status of every recipient whose address equals email
// and returns how many were updated.
func (s *Store) UpdateStatusByEmail(email string, status Status) int {
	if !status.valid() {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range s.items {
		if s.items[i].Email == email {
			s.items[i].Status = status
			n++
		}
	}
	return n
}

// Get returns the recipient at row.
func (s *Store) Get(row int) (Recipient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if row < 0 || row >= len(s.items) {
		return Recipient{}, false
	}
	return s.items[row], true
}

// All returns a copy of the list in order.
func (s *Store) All() []Recipient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Recipient, len(s.items))
	copy(out, s.items)
	return out
}

// Rows returns the name/email pairs without statuses, in order.
func (s *Store) Rows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Row, len(s.items))
	for i, r := range s.items {
		out[i] = Row{Name: r.Name, Email: r.Email}
	}
	return out
}

// Len returns the number of recipients.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Counts returns status totals.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := Counts{Total: len(s.items)}
	for _, r := range s.items {
		switch r.Status {
		case StatusSent:
			c.Sent++
		case StatusFailed:
			c.Failed++
		default:
			c.Pending++
		}
	}
	return c
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	return &Store{items: s.All()}
}

// MarshalJSON encodes the list as a JSON array.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}

// UnmarshalJSON replaces the list from a JSON array, keeping statuses.
// Rows are renumbered by position.
func (s *Store) UnmarshalJSON(data []byte) error {
	var items []Recipient
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	for i := range items {
		items[i].Row = i
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}
