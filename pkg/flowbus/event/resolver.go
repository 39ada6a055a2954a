package event

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unsafe"

	"github.com/randalmurphal/flowbus/pkg/flowbus/registry"
)

// Sentinel errors for projecting an event onto a parameter type.
var (
	// ErrNotInSet indicates the requested type is not one the event matches.
	ErrNotInSet = errors.New("type not in matching set")

	// ErrNilValue indicates the event (or an embedded ancestor pointer) is nil.
	ErrNilValue = errors.New("nil event value")

	// ErrNotAssignable indicates the matched value cannot be converted to the requested type.
	ErrNotAssignable = errors.New("event not assignable to type")
)

// MatchKind says why a type belongs to a matching set.
type MatchKind int

const (
	// MatchOwn is the event's own concrete type.
	MatchOwn MatchKind = iota

	// MatchCapability is an interface extending Event that the event implements.
	MatchCapability

	// MatchAncestor is an embedded event struct on the event's ancestor chain.
	MatchAncestor
)

// String returns the kind name.
func (k MatchKind) String() string {
	switch k {
	case MatchOwn:
		return "own"
	case MatchCapability:
		return "capability"
	case MatchAncestor:
		return "ancestor"
	default:
		return "unknown"
	}
}

type member struct {
	typ  reflect.Type
	kind MatchKind
	path []int // field index path from the event struct, ancestors only
}

// TypeSet is the matching-type set of one dynamic event type: its own
// type, the capabilities it implements and its ancestors. It is immutable
// and shared between publishes of the same type.
type TypeSet struct {
	source  reflect.Type
	members []member
	index   map[reflect.Type]int
}

func newTypeSet(source reflect.Type) *TypeSet {
	return &TypeSet{
		source: source,
		index:  make(map[reflect.Type]int),
	}
}

func (s *TypeSet) add(t reflect.Type, kind MatchKind, path []int) {
	if _, ok := s.index[t]; ok {
		return
	}
	s.index[t] = len(s.members)
	s.members = append(s.members, member{typ: t, kind: kind, path: path})
}

// Source returns the dynamic type of the events this set was computed for.
func (s *TypeSet) Source() reflect.Type {
	return s.source
}

// Contains reports whether t (normalized) is in the set.
func (s *TypeSet) Contains(t reflect.Type) bool {
	_, ok := s.index[Normalize(t)]
	return ok
}

// Kind returns why t is in the set.
func (s *TypeSet) Kind(t reflect.Type) (MatchKind, bool) {
	i, ok := s.index[Normalize(t)]
	if !ok {
		return 0, false
	}
	return s.members[i].kind, true
}

// Types returns the members in order: own type, capabilities, ancestors.
func (s *TypeSet) Types() []reflect.Type {
	out := make([]reflect.Type, len(s.members))
	for i, m := range s.members {
		out[i] = m.typ
	}
	return out
}

// Len returns the number of types in the set.
func (s *TypeSet) Len() int {
	return len(s.members)
}

// String lists the member type names.
func (s *TypeSet) String() string {
	names := make([]string, len(s.members))
	for i, m := range s.members {
		names[i] = m.typ.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Project returns evt as a value of type want, which must be a member of
// the set (pointer or not). Ancestors are projected to the embedded field;
// when the event was published by pointer, a pointer parameter receives
// the address of the field inside the original event.
func (s *TypeSet) Project(evt Event, want reflect.Type) (reflect.Value, error) {
	i, ok := s.index[Normalize(want)]
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNotInSet, want)
	}
	m := s.members[i]

	v := reflect.ValueOf(evt)
	if m.kind == MatchCapability {
		return v, nil
	}

	if len(m.path) > 0 {
		field, err := embedded(v, m.path)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("project %s: %w", m.typ, err)
		}
		v = field
	}
	return adapt(v, want)
}

// embedded walks path from the event root to an ancestor field. A value
// event is copied first so its fields are addressable; a pointer event is
// walked in place. Fields reached through unexported embeds are re-exposed
// so they can be passed to handlers.
func embedded(v reflect.Value, path []int) (reflect.Value, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, ErrNilValue
		}
		v = v.Elem()
	} else {
		root := reflect.New(v.Type()).Elem()
		root.Set(v)
		v = root
	}

	for i, x := range path {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, fmt.Errorf("%w: embedded %s", ErrNilValue, v.Type())
			}
			v = v.Elem()
		}
		v = v.Field(x)
		if !v.CanInterface() {
			v = reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
		}
	}
	return v, nil
}

// adapt converts between T and *T as the parameter requires.
func adapt(v reflect.Value, want reflect.Type) (reflect.Value, error) {
	have := v.Type()
	switch {
	case have == want:
		return v, nil
	case want.Kind() == reflect.Pointer && want.Elem() == have:
		if v.CanAddr() {
			return v.Addr(), nil
		}
		p := reflect.New(have)
		p.Elem().Set(v)
		return p, nil
	case have.Kind() == reflect.Pointer && have.Elem() == want:
		if v.IsNil() {
			return reflect.Value{}, ErrNilValue
		}
		return v.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrNotAssignable, have, want)
}

// Resolver computes matching-type sets.
//
// Go cannot enumerate the interfaces a type implements, so the resolver
// checks events against a catalog of known capabilities. Event itself is
// always in the catalog; DeclareCapability adds more. Sets are cached per
// dynamic event type, and the cache is dropped whenever the catalog grows.
type Resolver struct {
	mu           sync.RWMutex
	capabilities *registry.Registry[reflect.Type, struct{}]
	cache        *registry.Registry[reflect.Type, *TypeSet]
}

// NewResolver creates a resolver whose catalog holds only Event.
func NewResolver() *Resolver {
	r := &Resolver{
		capabilities: registry.New[reflect.Type, struct{}](),
		cache:        registry.New[reflect.Type, *TypeSet](),
	}
	r.capabilities.Register(baseType, struct{}{})
	return r
}

// DeclareCapability adds t to the catalog. It returns false, and does
// nothing, unless t is an interface extending Event.
func (r *Resolver) DeclareCapability(t reflect.Type) bool {
	if !IsCapability(t) {
		return false
	}
	if r.capabilities.Has(t) {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capabilities.Insert(t, struct{}{}) {
		r.cache.Clear()
	}
	return true
}

// Capabilities returns the catalog in declaration order.
func (r *Resolver) Capabilities() []reflect.Type {
	return r.capabilities.Keys()
}

// Match returns the matching-type set for evt. A nil event matches nothing.
func (r *Resolver) Match(evt Event) *TypeSet {
	if evt == nil {
		return newTypeSet(nil)
	}
	dyn := reflect.TypeOf(evt)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cache.GetOrCreate(dyn, func() *TypeSet {
		return r.compute(dyn)
	})
}

// compute builds the set for a dynamic type. Callers hold r.mu.
func (r *Resolver) compute(dyn reflect.Type) *TypeSet {
	own := Normalize(dyn)
	set := newTypeSet(dyn)
	set.add(own, MatchOwn, nil)

	for _, c := range r.capabilities.Keys() {
		if dyn.Implements(c) {
			set.add(c, MatchCapability, nil)
		}
	}

	var path []int
	seen := map[reflect.Type]bool{own: true}
	for cur := own; cur.Kind() == reflect.Struct; {
		f, ok := ancestorField(cur)
		if !ok {
			break
		}
		next := Normalize(f.Type)
		if seen[next] {
			break
		}
		seen[next] = true

		path = append(append([]int(nil), path...), f.Index...)
		set.add(next, MatchAncestor, path)
		cur = next
	}
	return set
}

// ancestorField returns the first embedded struct field of t that carries
// Event. Unexported embeds count.
func ancestorField(t reflect.Type) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := Normalize(f.Type)
		if ft.Kind() != reflect.Struct {
			continue
		}
		if Carries(ft) {
			return f, true
		}
	}
	return reflect.StructField{}, false
}
