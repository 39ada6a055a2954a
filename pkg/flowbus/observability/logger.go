// Package observability provides structured logging, metrics, and
// distributed tracing for flowbus dispatchers.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// EnrichLogger adds dispatch context to a logger.
// Returns a new logger with event_type and registration_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "orders.OrderPlaced", id.String())
//	enriched.Info("charging card") // includes event_type, registration_id
func EnrichLogger(logger *slog.Logger, eventType, registrationID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_type", eventType),
		slog.String("registration_id", registrationID),
	)
}

// LogRegister logs a new handler registration.
func LogRegister(logger *slog.Logger, registrationID, eventType, handler string) {
	if logger == nil {
		return
	}
	logger.Debug("handler registered",
		slog.String("registration_id", registrationID),
		slog.String("event_type", eventType),
		slog.String("handler", handler),
	)
}

// LogUnregister logs removal of a registration.
// removed is false when the ID was unknown or already removed.
func LogUnregister(logger *slog.Logger, registrationID string, removed bool) {
	if logger == nil {
		return
	}
	logger.Debug("handler unregistered",
		slog.String("registration_id", registrationID),
		slog.Bool("removed", removed),
	)
}

// LogPublish logs the start of a publish.
func LogPublish(logger *slog.Logger, eventType, eventID string, matched int) {
	if logger == nil {
		return
	}
	logger.Debug("event published",
		slog.String("event_type", eventType),
		slog.String("event_id", eventID),
		slog.Int("handlers", matched),
	)
}

// LogPublishComplete logs the end of a publish.
func LogPublishComplete(logger *slog.Logger, eventType string, durationMs float64, invoked, failed int) {
	if logger == nil {
		return
	}
	level := slog.LevelDebug
	if failed > 0 {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "event dispatched",
		slog.String("event_type", eventType),
		slog.Float64("duration_ms", durationMs),
		slog.Int("invoked", invoked),
		slog.Int("failed", failed),
	)
}

// LogInvocationError logs a handler that could not be invoked or failed.
func LogInvocationError(logger *slog.Logger, eventType, registrationID, handler string, err error) {
	if logger == nil {
		return
	}
	logger.Error("handler failed",
		slog.String("event_type", eventType),
		slog.String("registration_id", registrationID),
		slog.String("handler", handler),
		slog.String("error", err.Error()),
	)
}

// LogJournalError logs a failure to record a failed invocation (non-fatal).
func LogJournalError(logger *slog.Logger, registrationID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("failure journal write failed",
		slog.String("registration_id", registrationID),
		slog.String("error", err.Error()),
	)
}

// LogJournalCloseError logs a failure to close a journal (non-fatal).
func LogJournalCloseError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("failure journal close failed",
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
