package flowbus

import (
	"reflect"

	"github.com/randalmurphal/flowbus/pkg/flowbus/registry"
)

// Provider supplies handler parameters that the event cannot.
// Resolve reports false when it has no value for t.
type Provider interface {
	Resolve(t reflect.Type) (any, bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(t reflect.Type) (any, bool)

// Resolve calls f(t).
func (f ProviderFunc) Resolve(t reflect.Type) (any, bool) {
	return f(t)
}

// Services is a small Provider keyed by exact parameter type.
// It is safe for concurrent use.
type Services struct {
	entries *registry.Registry[reflect.Type, func() any]
}

var _ Provider = (*Services)(nil)

// NewServices creates an empty container.
func NewServices() *Services {
	return &Services{entries: registry.New[reflect.Type, func() any]()}
}

// Singleton makes every handler parameter of type T receive v.
// Registering T again replaces the previous entry.
func Singleton[T any](s *Services, v T) {
	s.entries.Register(reflect.TypeFor[T](), func() any { return v })
}

// Transient makes every handler parameter of type T receive a fresh
// value from factory.
func Transient[T any](s *Services, factory func() T) {
	s.entries.Register(reflect.TypeFor[T](), func() any { return factory() })
}

// Resolve implements Provider.
func (s *Services) Resolve(t reflect.Type) (any, bool) {
	f, ok := s.entries.Get(t)
	if !ok {
		return nil, false
	}
	return f(), true
}

// Len returns the number of registered types.
func (s *Services) Len() int {
	return s.entries.Len()
}
