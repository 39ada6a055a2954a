package flowbus_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowbus/pkg/flowbus"
	"github.com/randalmurphal/flowbus/pkg/flowbus/config"
	"github.com/randalmurphal/flowbus/pkg/flowbus/journal"
)

func TestFromSettings_Defaults(t *testing.T) {
	d, err := flowbus.FromSettings(config.Default())
	require.NoError(t, err)
	defer d.Close()

	flowbus.Register[CustomEvent](d, func() { panic("boom") })
	err = d.Handle(context.Background(), newCustom(1))
	assert.ErrorIs(t, err, flowbus.ErrHandlerPanic, "panics are recovered by default")
}

func TestFromSettings_PanicRecoveryOff(t *testing.T) {
	s := config.Default()
	s.RecoverPanics = false

	d, err := flowbus.FromSettings(s)
	require.NoError(t, err)
	flowbus.Register[CustomEvent](d, func() { panic("boom") })

	assert.Panics(t, func() { _ = d.Handle(context.Background(), newCustom(1)) })
}

func TestFromSettings_Invalid(t *testing.T) {
	s := config.Default()
	s.Journal.Driver = config.JournalSQLite

	_, err := flowbus.FromSettings(s)
	assert.ErrorContains(t, err, "invalid settings")
}

func TestFromSettings_SQLiteJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.db")
	s := config.Default()
	s.Journal = config.Journal{Driver: config.JournalSQLite, Path: path}

	d, err := flowbus.FromSettings(s)
	require.NoError(t, err)

	flowbus.Register[CustomEvent](d, func() error { return errors.New("declined") })
	require.Error(t, d.Handle(context.Background(), newCustom(1)))
	require.NoError(t, d.Close())
	require.NoError(t, d.Close(), "closing twice is safe")

	// The dispatcher closed its journal; reopen to read what it wrote.
	j, err := journal.NewSQLiteJournal(path)
	require.NoError(t, err)
	defer j.Close()

	n, err := j.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFromSettings_OptionsOverride(t *testing.T) {
	s := config.Default()
	s.Journal.Driver = config.JournalMemory

	mine := journal.NewMemoryJournal(0)
	defer mine.Close()

	d, err := flowbus.FromSettings(s, flowbus.WithJournal(mine))
	require.NoError(t, err)
	defer d.Close()

	flowbus.Register[CustomEvent](d, func() error { return errors.New("declined") })
	require.Error(t, d.Handle(context.Background(), newCustom(1)))

	n, err := mine.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHandle_AfterCloseSkipsJournal(t *testing.T) {
	s := config.Default()
	s.Journal.Driver = config.JournalMemory

	d, err := flowbus.FromSettings(s)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	flowbus.Register[CustomEvent](d, func() error { return errors.New("declined") })
	err = d.Handle(context.Background(), newCustom(1))
	assert.Error(t, err)
}
