package flowbus

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"runtime/debug"

	"github.com/randalmurphal/flowbus/pkg/flowbus/event"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// slotKind says where a handler parameter gets its value.
type slotKind int

const (
	// slotContext receives the context passed to Handle.
	slotContext slotKind = iota
	// slotEvent receives the event when its type matches, else a dependency.
	slotEvent
	// slotDependency always comes from the provider.
	slotDependency
)

type slot struct {
	kind slotKind
	typ  reflect.Type
}

// handlerPlan is a handler's calling convention, computed once at registration.
type handlerPlan struct {
	fn           reflect.Value
	name         string
	slots        []slot
	returnsError bool
}

func newHandlerPlan(handler any) (*handlerPlan, error) {
	if handler == nil {
		return nil, fmt.Errorf("%w: got nil", ErrInvalidHandler)
	}
	fn := reflect.ValueOf(handler)
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidHandler, handler)
	}
	if fn.IsNil() {
		return nil, fmt.Errorf("%w: got nil %T", ErrInvalidHandler, handler)
	}
	t := fn.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic %s", ErrInvalidHandler, t)
	}

	plan := &handlerPlan{
		fn:    fn,
		name:  funcName(fn),
		slots: make([]slot, t.NumIn()),
	}
	for i := range plan.slots {
		pt := t.In(i)
		switch {
		case pt == contextType:
			plan.slots[i] = slot{kind: slotContext, typ: pt}
		case event.Carries(pt):
			plan.slots[i] = slot{kind: slotEvent, typ: pt}
		default:
			plan.slots[i] = slot{kind: slotDependency, typ: pt}
		}
	}
	if n := t.NumOut(); n > 0 && t.Out(n-1) == errorType {
		plan.returnsError = true
	}
	return plan, nil
}

func funcName(fn reflect.Value) string {
	if f := runtime.FuncForPC(fn.Pointer()); f != nil {
		return f.Name()
	}
	return fn.Type().String()
}

// capabilities returns the interface parameter types that extend Event.
func (p *handlerPlan) capabilities() []reflect.Type {
	var out []reflect.Type
	for _, s := range p.slots {
		if s.kind == slotEvent && event.IsCapability(s.typ) {
			out = append(out, s.typ)
		}
	}
	return out
}

// arguments resolves one value per slot, in declaration order.
func (p *handlerPlan) arguments(ctx context.Context, evt event.Event, set *event.TypeSet, provider Provider) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(p.slots))
	for i, s := range p.slots {
		switch {
		case s.kind == slotContext:
			args[i] = reflect.ValueOf(&ctx).Elem()
		case s.kind == slotEvent && set.Contains(s.typ):
			v, err := set.Project(evt, s.typ)
			if err != nil {
				return nil, &ResolutionError{Param: i, Type: s.typ, Err: err}
			}
			args[i] = v
		default:
			v, err := resolveDependency(provider, s.typ)
			if err != nil {
				return nil, &ResolutionError{Param: i, Type: s.typ, Err: err}
			}
			args[i] = v
		}
	}
	return args, nil
}

func resolveDependency(provider Provider, t reflect.Type) (reflect.Value, error) {
	if provider == nil {
		return reflect.Value{}, ErrNoProvider
	}
	v, ok := provider.Resolve(t)
	if !ok || isNil(v) {
		return reflect.Value{}, ErrUnresolved
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%w: got %s", ErrTypeMismatch, rv.Type())
	}
	if rv.Type() != t {
		// Concrete value for an interface parameter.
		conv := reflect.New(t).Elem()
		conv.Set(rv)
		rv = conv
	}
	return rv, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// call invokes the handler. A trailing non-nil error result is returned,
// as is a recovered panic when recoverPanics is set.
func (p *handlerPlan) call(args []reflect.Value, recoverPanics bool) (err error) {
	if recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{Value: r, Stack: debug.Stack()}
			}
		}()
	}

	out := p.fn.Call(args)
	if p.returnsError {
		if e, ok := out[len(out)-1].Interface().(error); ok && e != nil {
			return e
		}
	}
	return nil
}
