package journal

import (
	"context"
	"sync"
)

// DefaultMaxSize bounds a MemoryJournal created with a non-positive size.
const DefaultMaxSize = 10000

var _ Journal = (*MemoryJournal)(nil)

// MemoryJournal keeps failures in memory, oldest first.
// Data is lost when the process exits.
type MemoryJournal struct {
	mu       sync.RWMutex
	failures []*Failure
	maxSize  int
	closed   bool
}

// NewMemoryJournal creates an in-memory journal holding at most maxSize entries.
func NewMemoryJournal(maxSize int) *MemoryJournal {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &MemoryJournal{maxSize: maxSize}
}

// Record implements Journal. Returns ErrFull once maxSize entries are stored.
func (m *MemoryJournal) Record(_ context.Context, f *Failure) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if len(m.failures) >= m.maxSize {
		return ErrFull
	}

	prepare(f)
	m.failures = append(m.failures, clone(f))
	return nil
}

// List implements Journal.
func (m *MemoryJournal) List(_ context.Context, limit int) ([]*Failure, error) {
	return m.collect(limit, func(*Failure) bool { return true })
}

// ListByEventType implements Journal.
func (m *MemoryJournal) ListByEventType(_ context.Context, eventType string, limit int) ([]*Failure, error) {
	return m.collect(limit, func(f *Failure) bool { return f.EventType == eventType })
}

func (m *MemoryJournal) collect(limit int, keep func(*Failure) bool) ([]*Failure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	out := make([]*Failure, 0)
	for _, f := range m.failures {
		if limit > 0 && len(out) >= limit {
			break
		}
		if keep(f) {
			out = append(out, clone(f))
		}
	}
	return out, nil
}

// Get implements Journal.
func (m *MemoryJournal) Get(_ context.Context, id string) (*Failure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	for _, f := range m.failures {
		if f.ID == id {
			return clone(f), nil
		}
	}
	return nil, ErrNotFound
}

// Delete implements Journal.
func (m *MemoryJournal) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for i, f := range m.failures {
		if f.ID == id {
			m.failures = append(m.failures[:i], m.failures[i+1:]...)
			return nil
		}
	}
	return nil
}

// Count implements Journal.
func (m *MemoryJournal) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrClosed
	}
	return len(m.failures), nil
}

// Close implements Journal. Closing twice is safe.
func (m *MemoryJournal) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.failures = nil
	return nil
}
