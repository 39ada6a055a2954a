// Package journal records handler failures for later inspection.
//
// The dispatcher writes one Failure per failed handler invocation when a
// Journal is configured. Two implementations are provided: MemoryJournal
// for tests and short-lived processes, and SQLiteJournal for durable storage.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Journal stores handler failures.
// Implementations must be safe for concurrent use.
type Journal interface {
	// Record appends a failure. A zero ID or FailedAt is filled in.
	Record(ctx context.Context, f *Failure) error

	// List returns up to limit failures, oldest first.
	// A limit <= 0 returns every failure.
	List(ctx context.Context, limit int) ([]*Failure, error)

	// ListByEventType returns up to limit failures recorded for eventType.
	ListByEventType(ctx context.Context, eventType string, limit int) ([]*Failure, error)

	// Get returns a single failure.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*Failure, error)

	// Delete removes a failure. Returns nil if it doesn't exist.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored failures.
	Count(ctx context.Context) (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Failure describes one failed handler invocation.
type Failure struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registration_id"`
	EventType      string    `json:"event_type"`
	EventID        string    `json:"event_id"`
	Handler        string    `json:"handler"`
	Error          string    `json:"error"`
	Payload        []byte    `json:"payload,omitempty"`
	FailedAt       time.Time `json:"failed_at"`
}

// Sentinel errors for journal operations.
var (
	// ErrNotFound indicates a failure doesn't exist.
	ErrNotFound = errors.New("journal entry not found")

	// ErrClosed indicates the journal has been closed.
	ErrClosed = errors.New("journal closed")

	// ErrFull indicates a bounded journal has reached its capacity.
	ErrFull = errors.New("journal full")
)

// NewFailure builds a Failure for an event that a handler failed on.
// The event is encoded as JSON when possible; an event that cannot be
// encoded is recorded without a payload.
func NewFailure(registrationID, eventType, eventID, handler string, evt any, cause error) *Failure {
	f := &Failure{
		ID:             uuid.NewString(),
		RegistrationID: registrationID,
		EventType:      eventType,
		EventID:        eventID,
		Handler:        handler,
		FailedAt:       time.Now().UTC(),
	}
	if cause != nil {
		f.Error = cause.Error()
	}
	if evt != nil {
		if data, err := json.Marshal(evt); err == nil {
			f.Payload = data
		}
	}
	return f
}

// prepare fills defaults before a failure is stored.
func prepare(f *Failure) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.FailedAt.IsZero() {
		f.FailedAt = time.Now().UTC()
	}
}

func clone(f *Failure) *Failure {
	c := *f
	if f.Payload != nil {
		c.Payload = make([]byte, len(f.Payload))
		copy(c.Payload, f.Payload)
	}
	return &c
}
