// Package flowbus is an in-process event dispatcher with type-compatible
// routing.
//
// Handlers are registered against an event type. Publishing an event runs
// every handler registered for the event's own type, for any capability
// (an interface extending event.Event) the event implements, and for any
// ancestor the event embeds. A handler registered for event.Event itself
// receives every event.
//
// # Quick Start
//
//	type OrderPlaced struct {
//	    event.Meta
//	    OrderID string
//	}
//
//	d := flowbus.New()
//	flowbus.Register[OrderPlaced](d, func(e OrderPlaced) {
//	    fmt.Println("placed", e.OrderID)
//	})
//	err := d.Handle(ctx, OrderPlaced{Meta: event.NewMeta(), OrderID: "o-1"})
//
// # Ancestors and Capabilities
//
// Go has no inheritance; an event's ancestors are the event structs it
// embeds. For
//
//	type Shipment struct{ event.Meta }
//	type ExpressShipment struct{ Shipment }
//
// a handler for Shipment also runs for ExpressShipment, and receives the
// embedded Shipment. Capabilities are interfaces:
//
//	type Billable interface {
//	    event.Event
//	    Amount() int
//	}
//
// Interfaces used as registration keys or handler parameters are known to
// the dispatcher automatically; others can be added with Capability.
//
// # Handler Parameters
//
// A handler is any function. Its parameters are filled in order:
//
//   - context.Context receives the context passed to Handle
//   - a type the event matches receives the event
//   - anything else is requested from the Provider set with WithProvider
//
// A missing provider, or a provider without a value, fails that handler
// with a *ResolutionError; the handler is never called with a zero value.
// A trailing error result and recovered panics are reported as failures.
//
// # Errors
//
// Handle attempts every matched handler, then returns a *PublishError
// listing every failure. It unwraps to each *InvocationError, so
//
//	errors.Is(err, flowbus.ErrNoProvider)
//
// works. Fan-out is not transactional: handlers that succeeded keep their
// effects.
//
// # Observability
//
// WithLogger, WithMetrics and WithTracing enable slog logging and
// OpenTelemetry metrics and spans. WithJournal records every failure in a
// journal.Journal.
package flowbus
