package event

import "reflect"

var baseType = reflect.TypeFor[Event]()

// BaseType returns the descriptor of the Event capability itself.
// A handler registered against it matches every event.
func BaseType() reflect.Type {
	return baseType
}

// TypeOf returns the normalized descriptor for T.
func TypeOf[T any]() reflect.Type {
	return Normalize(reflect.TypeFor[T]())
}

// Normalize collapses a pointer to a concrete type onto that type, so that
// Order and *Order name the same routing key. Interfaces are unchanged.
func Normalize(t reflect.Type) reflect.Type {
	if t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() != reflect.Interface {
		return t.Elem()
	}
	return t
}

// Carries reports whether values of t, or pointers to them, are events.
func Carries(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Implements(baseType) {
		return true
	}
	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer {
		return reflect.PointerTo(t).Implements(baseType)
	}
	return false
}

// IsCapability reports whether t is an interface that extends Event,
// including Event itself.
func IsCapability(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Interface && t.Implements(baseType)
}
