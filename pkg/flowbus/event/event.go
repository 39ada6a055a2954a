package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is the base capability every published value carries.
//
// Any interface that embeds Event is a capability of its own: a handler
// registered against it receives every event whose type implements it.
// Concrete events are usually structs that embed Meta, directly or through
// another event struct.
type Event interface {
	// EventID returns the unique identifier of this occurrence.
	EventID() string

	// OccurredAt returns when the event happened.
	OccurredAt() time.Time
}

// Correlated is implemented by events that carry correlation and causation
// identifiers. Meta implements it.
type Correlated interface {
	CorrelationID() string
	CausationID() string
}

// Meta holds the identity of an event occurrence. Embed it in event
// structs to satisfy Event:
//
//	type OrderPlaced struct {
//	    event.Meta
//	    OrderID string
//	}
//
// Meta uses value receivers, so both T and *T are events.
type Meta struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Correlation string    `json:"correlation_id,omitempty"`
	Causation   string    `json:"causation_id,omitempty"`
}

// EventID returns the unique event identifier.
func (m Meta) EventID() string {
	return m.ID
}

// OccurredAt returns when the event occurred.
func (m Meta) OccurredAt() time.Time {
	return m.Timestamp
}

// CorrelationID returns the ID grouping related events.
func (m Meta) CorrelationID() string {
	return m.Correlation
}

// CausationID returns the ID of the event that directly caused this one.
func (m Meta) CausationID() string {
	return m.Causation
}

// MetaOption configures Meta creation.
type MetaOption func(*Meta)

// WithID sets a specific event ID (default: auto-generated UUID).
func WithID(id string) MetaOption {
	return func(m *Meta) {
		m.ID = id
	}
}

// WithCorrelationID sets the correlation ID.
func WithCorrelationID(id string) MetaOption {
	return func(m *Meta) {
		m.Correlation = id
	}
}

// WithCausationID sets the ID of the causing event.
func WithCausationID(id string) MetaOption {
	return func(m *Meta) {
		m.Causation = id
	}
}

// WithTimestamp sets a specific timestamp (default: time.Now()).
func WithTimestamp(t time.Time) MetaOption {
	return func(m *Meta) {
		m.Timestamp = t
	}
}

// NewMeta creates event metadata with a fresh ID and the current time.
// Without WithCorrelationID the event starts its own correlation chain.
func NewMeta(opts ...MetaOption) Meta {
	m := Meta{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.Correlation == "" {
		m.Correlation = m.ID
	}
	return m
}

// NewMetaFromParent creates metadata for an event caused by parent.
// The child inherits the parent's correlation ID (or the parent's ID when
// the parent is not Correlated) and records the parent as its cause.
func NewMetaFromParent(parent Event, opts ...MetaOption) Meta {
	correlation := parent.EventID()
	if c, ok := parent.(Correlated); ok && c.CorrelationID() != "" {
		correlation = c.CorrelationID()
	}
	parentOpts := []MetaOption{
		WithCorrelationID(correlation),
		WithCausationID(parent.EventID()),
	}
	return NewMeta(append(parentOpts, opts...)...)
}
