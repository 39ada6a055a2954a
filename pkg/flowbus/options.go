package flowbus

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/flowbus/pkg/flowbus/journal"
)

// dispatchConfig holds dispatcher configuration.
type dispatchConfig struct {
	logger         *slog.Logger
	provider       Provider
	journal        journal.Journal
	ownsJournal    bool
	newID          func() uuid.UUID
	recoverPanics  bool
	metricsEnabled bool
	tracingEnabled bool
}

func defaultDispatchConfig() dispatchConfig {
	return dispatchConfig{
		newID:         uuid.New,
		recoverPanics: true,
	}
}

// Option configures a Dispatcher.
type Option func(*dispatchConfig)

// WithLogger sets the logger used for dispatch events.
// A nil logger (the default) disables logging.
//
// Example:
//
//	d := flowbus.New(flowbus.WithLogger(slog.Default()))
func WithLogger(logger *slog.Logger) Option {
	return func(c *dispatchConfig) {
		c.logger = logger
	}
}

// WithProvider sets the dependency provider consulted for handler
// parameters that are not satisfied by the event.
//
// Example:
//
//	services := flowbus.NewServices()
//	flowbus.Singleton(services, repo)
//	d := flowbus.New(flowbus.WithProvider(services))
func WithProvider(p Provider) Option {
	return func(c *dispatchConfig) {
		c.provider = p
	}
}

// WithJournal records every handler failure in j.
// The caller keeps ownership; Close does not close j.
func WithJournal(j journal.Journal) Option {
	return func(c *dispatchConfig) {
		c.journal = j
		c.ownsJournal = false
	}
}

// WithIDGenerator replaces the registration id source. Default: uuid.New.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(c *dispatchConfig) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithPanicRecovery controls whether a panicking handler is reported as
// an InvocationError (true, the default) or left to unwind the caller.
func WithPanicRecovery(enabled bool) Option {
	return func(c *dispatchConfig) {
		c.recoverPanics = enabled
	}
}

// WithMetrics enables OpenTelemetry metrics for publishes and handlers.
// Uses the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *dispatchConfig) {
		c.metricsEnabled = enabled
	}
}

// WithTracing enables OpenTelemetry spans for publishes and handlers.
// Uses the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *dispatchConfig) {
		c.tracingEnabled = enabled
	}
}
