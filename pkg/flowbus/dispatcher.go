package flowbus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/flowbus/pkg/flowbus/event"
	"github.com/randalmurphal/flowbus/pkg/flowbus/journal"
	"github.com/randalmurphal/flowbus/pkg/flowbus/observability"
)

// Dispatcher routes published events to every handler registered for
// the event's own type, a capability it implements, or an ancestor it
// embeds. It is safe for concurrent use.
type Dispatcher struct {
	cfg      dispatchConfig
	resolver *event.Resolver
	store    *registrationStore
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager

	journalMu sync.RWMutex
	journal   journal.Journal
}

// New creates a dispatcher.
//
// Example:
//
//	d := flowbus.New(
//	    flowbus.WithLogger(logger),
//	    flowbus.WithProvider(services),
//	)
func New(opts ...Option) *Dispatcher {
	cfg := defaultDispatchConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Dispatcher{
		cfg:      cfg,
		resolver: event.NewResolver(),
		store:    newRegistrationStore(cfg.newID),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		journal:  cfg.journal,
	}
	if cfg.metricsEnabled {
		d.metrics = observability.NewMetricsRecorder()
	}
	if cfg.tracingEnabled {
		d.spans = observability.NewSpanManager()
	}
	return d
}

// Register adds handler for events matching E and returns its id.
//
// The handler must be a function. Each parameter receives, in order:
// the Handle context for context.Context, the event when the parameter's
// type is one the event matches, or a value from the dependency provider.
// A trailing error result is reported as a failure.
//
// Register panics if handler is not a function.
func Register[E event.Event](d *Dispatcher, handler any) uuid.UUID {
	id, err := d.RegisterType(reflect.TypeFor[E](), handler)
	if err != nil {
		panic(fmt.Sprintf("flowbus: Register[%s]: %v", reflect.TypeFor[E](), err))
	}
	return id
}

// RegisterType is the non-generic form of Register.
// eventType may be a struct event type, a pointer to one, or an interface
// extending event.Event.
func (d *Dispatcher) RegisterType(eventType reflect.Type, handler any) (uuid.UUID, error) {
	key := event.Normalize(eventType)
	if !event.Carries(key) {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrNotEventType, eventType)
	}
	plan, err := newHandlerPlan(handler)
	if err != nil {
		return uuid.Nil, err
	}

	if event.IsCapability(key) {
		d.resolver.DeclareCapability(key)
	}
	for _, c := range plan.capabilities() {
		d.resolver.DeclareCapability(c)
	}

	id := d.store.insert(key, plan)
	observability.LogRegister(d.cfg.logger, id.String(), key.String(), plan.name)
	return id, nil
}

// Unregister removes a registration. Unknown or already removed ids are ignored.
func (d *Dispatcher) Unregister(id uuid.UUID) {
	removed := d.store.remove(id)
	observability.LogUnregister(d.cfg.logger, id.String(), removed)
}

// DeclareCapability adds an interface extending event.Event to the set of
// capabilities events are matched against. Interfaces used as registration
// keys or handler parameters are declared automatically.
func (d *Dispatcher) DeclareCapability(t reflect.Type) error {
	if !d.resolver.DeclareCapability(t) {
		return fmt.Errorf("%w: %v", ErrNotCapability, t)
	}
	return nil
}

// Capability declares I with d. See Dispatcher.DeclareCapability.
func Capability[I event.Event](d *Dispatcher) error {
	return d.DeclareCapability(reflect.TypeFor[I]())
}

// Len returns the number of registrations.
func (d *Dispatcher) Len() int {
	return d.store.len()
}

// Handle publishes evt to every matching handler, synchronously and in
// registration order.
//
// Every matched handler is attempted even when an earlier one fails.
// Failures are returned together as a *PublishError once all handlers
// have run; effects of handlers that succeeded are left in place.
// Publishing an event nobody handles is not an error.
func (d *Dispatcher) Handle(ctx context.Context, evt event.Event) (err error) {
	if isNil(evt) {
		return ErrNilEvent
	}
	if ctx == nil {
		ctx = context.Background()
	}

	set := d.resolver.Match(evt)
	eventType := event.Normalize(set.Source()).String()
	eventID := evt.EventID()
	matched := d.store.lookup(set)

	ctx, span := d.spans.StartPublishSpan(ctx, eventType, eventID)
	defer func() {
		d.spans.EndSpanWithError(span, err)
	}()

	d.metrics.RecordPublish(ctx, eventType, len(matched))
	observability.LogPublish(d.cfg.logger, eventType, eventID, len(matched))
	elapsed := observability.TimedOperation()

	var failures []*InvocationError
	for _, reg := range matched {
		if ierr := d.invoke(ctx, evt, set, reg, eventType); ierr != nil {
			failures = append(failures, ierr)
		}
	}

	observability.LogPublishComplete(d.cfg.logger, eventType, elapsed(), len(matched), len(failures))
	if len(failures) == 0 {
		return nil
	}
	return &PublishError{
		EventType: eventType,
		Attempted: len(matched),
		Failures:  failures,
	}
}

// invoke resolves arguments for one registration and calls it.
func (d *Dispatcher) invoke(ctx context.Context, evt event.Event, set *event.TypeSet, reg *registration, eventType string) *InvocationError {
	regID := reg.id.String()
	hctx, span := d.spans.StartHandlerSpan(ctx, regID, reg.plan.name)
	hctx = withLogger(hctx, observability.EnrichLogger(d.cfg.logger, eventType, regID))

	start := time.Now()
	err := d.run(hctx, evt, set, reg)
	d.metrics.RecordInvocation(hctx, eventType, reg.plan.name, time.Since(start), err)
	d.spans.EndSpanWithError(span, err)
	if err == nil {
		return nil
	}

	ierr := &InvocationError{
		RegistrationID: reg.id,
		Handler:        reg.plan.name,
		EventType:      eventType,
		Err:            err,
	}
	observability.LogInvocationError(d.cfg.logger, eventType, regID, reg.plan.name, err)
	d.recordFailure(ctx, evt, ierr)
	return ierr
}

func (d *Dispatcher) run(ctx context.Context, evt event.Event, set *event.TypeSet, reg *registration) error {
	args, err := reg.plan.arguments(ctx, evt, set, d.cfg.provider)
	if err != nil {
		return err
	}
	return reg.plan.call(args, d.cfg.recoverPanics)
}

// recordFailure writes ierr to the journal. Journal errors are logged only.
func (d *Dispatcher) recordFailure(ctx context.Context, evt event.Event, ierr *InvocationError) {
	d.journalMu.RLock()
	defer d.journalMu.RUnlock()
	if d.journal == nil {
		return
	}

	f := journal.NewFailure(ierr.RegistrationID.String(), ierr.EventType, evt.EventID(), ierr.Handler, evt, ierr.Err)
	if err := d.journal.Record(context.WithoutCancel(ctx), f); err != nil {
		observability.LogJournalError(d.cfg.logger, ierr.RegistrationID.String(), err)
	}
}

// Close releases a journal created by FromSettings. A journal passed with
// WithJournal stays open. Routing keeps working after Close; failures are
// no longer journaled.
func (d *Dispatcher) Close() error {
	d.journalMu.Lock()
	defer d.journalMu.Unlock()

	j := d.journal
	d.journal = nil
	if j == nil || !d.cfg.ownsJournal {
		return nil
	}
	return j.Close()
}
