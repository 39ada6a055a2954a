package flowbus

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/randalmurphal/flowbus/pkg/flowbus/config"
	"github.com/randalmurphal/flowbus/pkg/flowbus/journal"
	"github.com/randalmurphal/flowbus/pkg/flowbus/observability"
)

// FromSettings builds a dispatcher from loaded settings. The logger writes
// to stderr. A journal opened here is owned by the dispatcher and closed
// by Close. opts are applied after the settings and win on conflict.
//
// Example:
//
//	s, err := config.Load("flowbus.yaml")
//	if err != nil {
//	    return err
//	}
//	d, err := flowbus.FromSettings(s, flowbus.WithProvider(services))
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
func FromSettings(s config.Settings, opts ...Option) (*Dispatcher, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	j, err := openJournal(s.Journal)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithLogger(s.Logger(os.Stderr)),
		WithPanicRecovery(s.RecoverPanics),
		WithMetrics(s.Metrics),
		WithTracing(s.Tracing),
	}
	if j != nil {
		base = append(base, func(c *dispatchConfig) {
			c.journal = j
			c.ownsJournal = true
		})
	}

	d := New(append(base, opts...)...)
	if j != nil && d.journal != j {
		// Replaced by WithJournal.
		releaseJournal(d.cfg.logger, j)
	}
	return d, nil
}

// releaseJournal closes a journal the dispatcher will never use.
func releaseJournal(logger *slog.Logger, j journal.Journal) {
	if err := j.Close(); err != nil {
		observability.LogJournalCloseError(logger, err)
	}
}

func openJournal(s config.Journal) (journal.Journal, error) {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case config.JournalMemory:
		return journal.NewMemoryJournal(s.MaxSize), nil
	case config.JournalSQLite:
		j, err := journal.NewSQLiteJournal(s.Path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		return j, nil
	default:
		return nil, nil
	}
}
