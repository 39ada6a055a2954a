package flowbus

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/flowbus/pkg/flowbus/journal"
)

// stuckJournal fails to close.
type stuckJournal struct {
	journal.Journal
	closed int
}

func (j *stuckJournal) Close() error {
	j.closed++
	return errors.New("database is locked")
}

func TestReleaseJournal_LogsCloseError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	j := &stuckJournal{}

	releaseJournal(logger, j)

	assert.Equal(t, 1, j.closed)
	assert.Contains(t, buf.String(), "failure journal close failed")
	assert.Contains(t, buf.String(), "database is locked")
}

func TestReleaseJournal_QuietOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	releaseJournal(logger, journal.NewMemoryJournal(0))

	assert.Empty(t, buf.String())
}
