package flowbus_test

import (
	"time"

	"github.com/randalmurphal/flowbus/pkg/flowbus/event"
)

// Billable is a capability: it extends event.Event.
type Billable interface {
	event.Event
	Amount() int
}

// Audited is implemented by SuperEvent but does not extend event.Event.
type Audited interface {
	Audit() string
}

// SuperEvent is the ancestor of CustomEvent.
type SuperEvent struct {
	event.Meta
	Total int
}

func (e SuperEvent) Amount() int   { return e.Total }
func (e SuperEvent) Audit() string { return "super" }

// CustomEvent embeds SuperEvent, which embeds event.Meta.
type CustomEvent struct {
	SuperEvent
	Note string
}

// CustomEvent2 is unrelated to CustomEvent apart from event.Meta.
type CustomEvent2 struct {
	event.Meta
	Seq int
}

type TestService struct {
	Value int
}

type TestService2 struct {
	hidden int
}

func (s *TestService2) HiddenValue() int { return s.hidden }

// Clock is an interface dependency.
type Clock interface {
	Now() time.Time
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newCustom(total int) CustomEvent {
	return CustomEvent{
		SuperEvent: SuperEvent{Meta: event.NewMeta(), Total: total},
		Note:       "note",
	}
}

func newCustom2(seq int) CustomEvent2 {
	return CustomEvent2{Meta: event.NewMeta(), Seq: seq}
}

// baseEvent and derivedEvent are chained through an unexported embed.
type baseEvent struct {
	event.Meta
	Total int
}

type derivedEvent struct {
	baseEvent
	Note string
}

func newDerived(total int) derivedEvent {
	return derivedEvent{baseEvent: baseEvent{Meta: event.NewMeta(), Total: total}}
}
