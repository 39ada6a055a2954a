package event_test

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowbus/pkg/flowbus/event"
)

func TestMatchOwnCapabilitiesAndAncestors(t *testing.T) {
	r := event.NewResolver()
	require.True(t, r.DeclareCapability(event.TypeOf[Capability]()))

	set := r.Match(CustomEvent{})

	assert.Equal(t, []reflect.Type{
		event.TypeOf[CustomEvent](),
		event.BaseType(),
		event.TypeOf[Capability](),
		event.TypeOf[SuperEvent](),
		event.TypeOf[event.Meta](),
	}, set.Types())
	assert.False(t, set.Contains(event.TypeOf[Unrelated]()))
	assert.False(t, set.Contains(event.TypeOf[CustomEvent2]()))
}

func TestMatchKinds(t *testing.T) {
	r := event.NewResolver()
	r.DeclareCapability(event.TypeOf[Capability]())
	set := r.Match(&CustomEvent{})

	tests := []struct {
		name string
		typ  reflect.Type
		want event.MatchKind
	}{
		{"own", event.TypeOf[CustomEvent](), event.MatchOwn},
		{"own by pointer", reflect.TypeFor[*CustomEvent](), event.MatchOwn},
		{"base capability", event.BaseType(), event.MatchCapability},
		{"declared capability", event.TypeOf[Capability](), event.MatchCapability},
		{"ancestor", event.TypeOf[SuperEvent](), event.MatchAncestor},
		{"root ancestor", event.TypeOf[event.Meta](), event.MatchAncestor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := set.Kind(tt.typ)
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestMatchWithoutExtraAncestors(t *testing.T) {
	r := event.NewResolver()

	set := r.Match(CustomEvent2{Id: 2})

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains(event.TypeOf[CustomEvent2]()))
	assert.True(t, set.Contains(event.BaseType()))
	assert.True(t, set.Contains(event.TypeOf[event.Meta]()))
}

func TestMatchBareEvent(t *testing.T) {
	set := event.NewResolver().Match(bareEvent{id: "x"})

	assert.Equal(t, []reflect.Type{event.TypeOf[bareEvent](), event.BaseType()}, set.Types())
}

func TestMatchUndeclaredCapability(t *testing.T) {
	r := event.NewResolver()

	set := r.Match(CustomEvent{})
	assert.False(t, set.Contains(event.TypeOf[Capability]()))

	r.DeclareCapability(event.TypeOf[Capability]())
	assert.True(t, r.Match(CustomEvent{}).Contains(event.TypeOf[Capability]()))
}

func TestDeclareCapabilityRejectsNonCapabilities(t *testing.T) {
	r := event.NewResolver()

	assert.False(t, r.DeclareCapability(event.TypeOf[Unrelated]()))
	assert.False(t, r.DeclareCapability(event.TypeOf[CustomEvent]()))
	assert.False(t, r.DeclareCapability(nil))
	assert.True(t, r.DeclareCapability(event.BaseType()))

	assert.Equal(t, []reflect.Type{event.BaseType()}, r.Capabilities())
}

func TestMatchSkipsNonEventEmbeds(t *testing.T) {
	set := event.NewResolver().Match(withLock{})

	assert.True(t, set.Contains(event.TypeOf[CustomEvent2]()))
	assert.True(t, set.Contains(event.TypeOf[event.Meta]()))
	assert.False(t, set.Contains(event.TypeOf[Service]()))
}

func TestMatchPointerEmbeddedAncestor(t *testing.T) {
	set := event.NewResolver().Match(PointerEmbedEvent{SuperEvent: &SuperEvent{}})

	assert.True(t, set.Contains(event.TypeOf[SuperEvent]()))
	assert.True(t, set.Contains(event.TypeOf[event.Meta]()))
}

func TestMatchUnexportedAncestor(t *testing.T) {
	set := event.NewResolver().Match(hiddenDerived{})

	assert.Equal(t, []reflect.Type{
		event.TypeOf[hiddenDerived](),
		event.BaseType(),
		event.TypeOf[hiddenBase](),
		event.TypeOf[event.Meta](),
	}, set.Types())
	kind, ok := set.Kind(reflect.TypeFor[*hiddenBase]())
	require.True(t, ok)
	assert.Equal(t, event.MatchAncestor, kind)
}

func TestMatchCaching(t *testing.T) {
	r := event.NewResolver()

	first := r.Match(CustomEvent{})
	second := r.Match(CustomEvent{Extra: 1})
	assert.Same(t, first, second)

	byPointer := r.Match(&CustomEvent{})
	assert.NotSame(t, first, byPointer, "pointer and value dynamic types are cached separately")

	r.DeclareCapability(event.TypeOf[Capability]())
	assert.NotSame(t, first, r.Match(CustomEvent{}), "catalog growth drops the cache")
}

func TestMatchNil(t *testing.T) {
	set := event.NewResolver().Match(nil)
	assert.Equal(t, 0, set.Len())
	assert.Nil(t, set.Source())
}

func TestMatchConcurrent(t *testing.T) {
	r := event.NewResolver()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.True(t, r.Match(&CustomEvent{}).Contains(event.TypeOf[SuperEvent]()))
		}()
		go func() {
			defer wg.Done()
			r.DeclareCapability(event.TypeOf[Capability]())
		}()
	}
	wg.Wait()
}

func TestProjectOwnType(t *testing.T) {
	r := event.NewResolver()
	evt := &CustomEvent{Extra: 7}
	set := r.Match(evt)

	v, err := set.Project(evt, reflect.TypeFor[*CustomEvent]())
	require.NoError(t, err)
	assert.Same(t, evt, v.Interface())

	v, err = set.Project(evt, reflect.TypeFor[CustomEvent]())
	require.NoError(t, err)
	assert.Equal(t, 7, v.Interface().(CustomEvent).Extra)
}

func TestProjectValueEventToPointer(t *testing.T) {
	evt := CustomEvent{Extra: 3}
	set := event.NewResolver().Match(evt)

	v, err := set.Project(evt, reflect.TypeFor[*CustomEvent]())
	require.NoError(t, err)
	assert.Equal(t, 3, v.Interface().(*CustomEvent).Extra)
}

func TestProjectAncestor(t *testing.T) {
	evt := &CustomEvent{SuperEvent: SuperEvent{Tag: "base"}}
	set := event.NewResolver().Match(evt)

	v, err := set.Project(evt, reflect.TypeFor[SuperEvent]())
	require.NoError(t, err)
	assert.Equal(t, "base", v.Interface().(SuperEvent).Tag)

	// A pointer parameter aliases the field inside the published event.
	v, err = set.Project(evt, reflect.TypeFor[*SuperEvent]())
	require.NoError(t, err)
	v.Interface().(*SuperEvent).Tag = "changed"
	assert.Equal(t, "changed", evt.Tag)

	v, err = set.Project(evt, reflect.TypeFor[event.Meta]())
	require.NoError(t, err)
	assert.IsType(t, event.Meta{}, v.Interface())
}

func TestProjectAncestorFromValueEvent(t *testing.T) {
	evt := CustomEvent{SuperEvent: SuperEvent{Tag: "copy"}}
	set := event.NewResolver().Match(evt)

	v, err := set.Project(evt, reflect.TypeFor[*SuperEvent]())
	require.NoError(t, err)
	assert.Equal(t, "copy", v.Interface().(*SuperEvent).Tag)
}

func TestProjectUnexportedAncestor(t *testing.T) {
	evt := &hiddenDerived{hiddenBase: hiddenBase{Meta: event.Meta{ID: "e-1"}, Total: 94}}
	set := event.NewResolver().Match(evt)

	v, err := set.Project(evt, reflect.TypeFor[hiddenBase]())
	require.NoError(t, err)
	assert.Equal(t, 94, v.Interface().(hiddenBase).Total)

	v, err = set.Project(evt, reflect.TypeFor[event.Meta]())
	require.NoError(t, err)
	assert.Equal(t, "e-1", v.Interface().(event.Meta).ID)

	// Published by pointer, the field is shared.
	v, err = set.Project(evt, reflect.TypeFor[*hiddenBase]())
	require.NoError(t, err)
	v.Interface().(*hiddenBase).Total = 100
	assert.Equal(t, 100, evt.Total)
}

func TestProjectUnexportedAncestorFromValueEvent(t *testing.T) {
	evt := hiddenDerived{hiddenBase: hiddenBase{Total: 94}}
	set := event.NewResolver().Match(evt)

	v, err := set.Project(evt, reflect.TypeFor[*hiddenBase]())
	require.NoError(t, err)
	v.Interface().(*hiddenBase).Total = 100
	assert.Equal(t, 94, evt.Total)
}

func TestProjectCapability(t *testing.T) {
	r := event.NewResolver()
	r.DeclareCapability(event.TypeOf[Capability]())
	evt := CustomEvent{SuperEvent: SuperEvent{Tag: "x"}}
	set := r.Match(evt)

	v, err := set.Project(evt, event.TypeOf[Capability]())
	require.NoError(t, err)
	assert.Equal(t, "custom:x", v.Interface().(Capability).Custom())

	v, err = set.Project(evt, event.BaseType())
	require.NoError(t, err)
	assert.Equal(t, evt, v.Interface())
}

func TestProjectErrors(t *testing.T) {
	r := event.NewResolver()

	evt := CustomEvent2{}
	_, err := r.Match(evt).Project(evt, reflect.TypeFor[SuperEvent]())
	assert.ErrorIs(t, err, event.ErrNotInSet)

	nilBase := PointerEmbedEvent{}
	_, err = r.Match(nilBase).Project(nilBase, reflect.TypeFor[SuperEvent]())
	assert.ErrorIs(t, err, event.ErrNilValue)

	// A nil pointer embed in the middle of the chain keeps the cause.
	_, err = r.Match(nilBase).Project(nilBase, reflect.TypeFor[event.Meta]())
	assert.ErrorIs(t, err, event.ErrNilValue)
	assert.ErrorContains(t, err, "event_test.SuperEvent")
}

func TestMatchKindString(t *testing.T) {
	assert.Equal(t, "own", event.MatchOwn.String())
	assert.Equal(t, "capability", event.MatchCapability.String())
	assert.Equal(t, "ancestor", event.MatchAncestor.String())
	assert.Equal(t, "unknown", event.MatchKind(42).String())
}
