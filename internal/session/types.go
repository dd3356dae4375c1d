package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no record exists for a session ID
	ErrNotFound = errors.New("session not found")
	// ErrVersionConflict is returned when a record changed since it was loaded
	ErrVersionConflict = errors.New("session version conflict")
)

// State is the client-visible authentication state of one browser
type State struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// LoggedOut returns the default state
func LoggedOut() State {
	return State{}
}

// Cookie is an upstream API cookie kept on behalf of the browser
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is the persisted form of a browser session.
// Version is zero until the first successful save.
type Record struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Cookies   []Cookie  `json:"cookies"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewRecord returns an unsaved logged-out record
func NewRecord(id string) *Record {
	return &Record{ID: id, State: LoggedOut()}
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	cp := *r
	cp.Cookies = append([]Cookie(nil), r.Cookies...)
	return &cp
}

// Store persists session records under their ID.
//
// Save is a compare-and-swap on Version: it succeeds only when the stored
// version equals rec.Version (zero meaning "must not exist yet"), and on
// success increments rec.Version and stamps rec.UpdatedAt.
//
// Touch marks the record as in use without changing its version, restarting
// its idle clock. A missing record is not an error.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// Sweeper is implemented by stores that need explicit expiry
type Sweeper interface {
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
}
