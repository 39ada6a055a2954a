package event_test

import (
	"time"

	"github.com/randalmurphal/flowbus/pkg/flowbus/event"
)

// Capability extends Event.
type Capability interface {
	event.Event
	Custom() string
}

// Unrelated is implemented by SuperEvent but does not extend Event.
type Unrelated interface {
	Describe() string
}

// SuperEvent is the intermediate ancestor: Meta -> SuperEvent -> CustomEvent.
type SuperEvent struct {
	event.Meta
	Tag string
}

func (e SuperEvent) Custom() string   { return "custom:" + e.Tag }
func (e SuperEvent) Describe() string { return "super" }

// CustomEvent derives from SuperEvent.
type CustomEvent struct {
	SuperEvent
	Extra int
}

// CustomEvent2 has no ancestor besides Meta.
type CustomEvent2 struct {
	event.Meta
	Id int `json:"seq"`
}

// PointerEmbedEvent reaches its ancestor through a pointer.
type PointerEmbedEvent struct {
	*SuperEvent
	Note string
}

type bareEvent struct {
	id string
}

func (e bareEvent) EventID() string       { return e.id }
func (e bareEvent) OccurredAt() time.Time { return time.Time{} }

type pointerOnly struct {
	id string
}

func (e *pointerOnly) EventID() string       { return e.id }
func (e *pointerOnly) OccurredAt() time.Time { return time.Time{} }

// Service is a plain dependency, not an event.
type Service struct {
	Value int
}

// withLock embeds a non-event struct before its event ancestor.
type withLock struct {
	Service
	CustomEvent2
}

// hiddenBase and hiddenDerived form an ancestor chain through unexported
// embeds.
type hiddenBase struct {
	event.Meta
	Total int
}

type hiddenDerived struct {
	hiddenBase
	Extra int
}
