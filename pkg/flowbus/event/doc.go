// Package event defines the base event capability and the type
// compatibility rules flowbus routes by.
//
// # Events and Capabilities
//
// Every published value implements Event. Embedding Meta is the usual way:
//
//	type AccountEvent struct {
//	    event.Meta
//	    AccountID string
//	}
//
//	type AccountOpened struct {
//	    AccountEvent
//	    Owner string
//	}
//
// Any interface that embeds Event is a capability:
//
//	type Auditable interface {
//	    event.Event
//	    AuditTrail() string
//	}
//
// # Matching-Type Sets
//
// Resolver.Match computes the set of types an event "is" for routing:
//
//  1. its own concrete type (pointers collapse onto the pointee)
//  2. every cataloged capability the dynamic type implements, Event included
//  3. its ancestors: the chain of embedded event structs, nearest first,
//     stopping at the first struct that embeds no further event
//
// For AccountOpened above the set is {AccountOpened, Event, Auditable (if
// implemented and declared), AccountEvent, Meta}. A handler keyed on any
// of those receives the event.
//
// Sets are computed once per dynamic type and cached. Declaring a new
// capability drops the cache.
//
// # Projection
//
// TypeSet.Project turns the event into an argument for a parameter of any
// member type. Ancestors are projected to the embedded field, so a
// handler taking *AccountEvent sees the AccountEvent inside the published
// *AccountOpened.
package event
