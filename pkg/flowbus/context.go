package flowbus

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// withLogger attaches logger to ctx when it is non-nil.
func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFrom returns the logger a dispatcher attached to a handler's
// context, already carrying event_type and registration_id. Handlers
// invoked without a configured logger get a logger that discards output.
//
// Example:
//
//	flowbus.Register[OrderPlaced](d, func(ctx context.Context, e OrderPlaced) {
//	    flowbus.LoggerFrom(ctx).Info("shipping", "order", e.OrderID)
//	})
func LoggerFrom(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.New(slog.DiscardHandler)
}
