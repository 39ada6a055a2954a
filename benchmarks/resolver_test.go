package benchmarks

import (
	"reflect"
	"testing"

	"github.com/randalmurphal/flowbus/pkg/flowbus/event"
)

// BenchmarkResolver_MatchCached measures a cached matching-set lookup.
func BenchmarkResolver_MatchCached(b *testing.B) {
	r := event.NewResolver()
	r.DeclareCapability(reflect.TypeFor[Billable]())
	evt := newDerived()
	r.Match(evt)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Match(evt)
	}
}

// BenchmarkResolver_MatchCold measures computing a set after the cache is dropped.
func BenchmarkResolver_MatchCold(b *testing.B) {
	evt := newDerived()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := event.NewResolver()
		r.DeclareCapability(reflect.TypeFor[Billable]())
		r.Match(evt)
	}
}

// BenchmarkTypeSet_ProjectAncestor projects the embedded Base out of Derived.
func BenchmarkTypeSet_ProjectAncestor(b *testing.B) {
	r := event.NewResolver()
	evt := newDerived()
	set := r.Match(&evt)
	want := reflect.TypeFor[*Base]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = set.Project(&evt, want)
	}
}
