package flowbus

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors for registration.
var (
	// ErrInvalidHandler indicates the handler is not a non-nil function.
	ErrInvalidHandler = errors.New("handler must be a function")

	// ErrNotEventType indicates a registration key that neither is nor carries Event.
	ErrNotEventType = errors.New("type is not an event type")

	// ErrNotCapability indicates a declared capability that is not an interface extending Event.
	ErrNotCapability = errors.New("type is not an event capability")
)

// Sentinel errors for publishing.
var (
	// ErrNilEvent indicates Handle() was called with a nil event.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrNoProvider indicates a handler needs a dependency but no provider is configured.
	ErrNoProvider = errors.New("no dependency provider configured")

	// ErrUnresolved indicates the provider had no value for a dependency.
	ErrUnresolved = errors.New("dependency not resolved")

	// ErrTypeMismatch indicates the provider returned a value of the wrong type.
	ErrTypeMismatch = errors.New("dependency has wrong type")

	// ErrHandlerPanic indicates a handler panicked and the panic was recovered.
	ErrHandlerPanic = errors.New("handler panicked")
)

// ResolutionError reports a handler parameter that could not be supplied.
type ResolutionError struct {
	Param int
	Type  reflect.Type
	Err   error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("parameter %d (%s): %v", e.Param, e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// InvocationError reports one handler that could not be invoked or failed.
type InvocationError struct {
	RegistrationID uuid.UUID
	Handler        string
	EventType      string
	Err            error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("handler %s (%s) on %s: %v", e.Handler, e.RegistrationID, e.EventType, e.Err)
}

// Unwrap returns the underlying error.
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// PublishError collects every handler failure of one Handle call.
// Handlers that ran successfully are not rolled back.
type PublishError struct {
	EventType string
	Attempted int
	Failures  []*InvocationError
}

// Error implements the error interface.
func (e *PublishError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d handlers failed for %s", len(e.Failures), e.Attempted, e.EventType)
	for _, f := range e.Failures {
		b.WriteString("; ")
		b.WriteString(f.Error())
	}
	return b.String()
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *PublishError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// PanicError carries a recovered panic value.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrHandlerPanic, e.Value)
}

// Unwrap returns ErrHandlerPanic.
func (e *PanicError) Unwrap() error {
	return ErrHandlerPanic
}
