// Package mock provides an in-memory database.Store for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/facegate/facegate/internal/database"
)

// MockStore is an in-memory implementation of database.Store and
// database.Searcher. It enforces the same name and dimension rules as the
// real backends so handler tests exercise realistic failures.
type MockStore struct {
	mu      sync.RWMutex
	entries map[string]*database.Entry
	order   []string
	dim     int

	// Track calls
	AddCalls    []string
	RemoveCalls []string
	SaveCalls   int

	// Error injection
	AddError         error
	GetError         error
	RemoveError      error
	NamesError       error
	EntriesError     error
	CountError       error
	ClearError       error
	SaveError        error
	CloseError       error
	FindNearestError error
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		entries: make(map[string]*database.Entry),
	}
}

// Seed inserts entries directly, bypassing validation and call tracking.
func (m *MockStore) Seed(entries ...database.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range entries {
		e := entry.Clone()
		if _, exists := m.entries[e.Name]; !exists {
			m.order = append(m.order, e.Name)
		}
		m.entries[e.Name] = &e
		if m.dim == 0 {
			m.dim = len(e.Encoding)
		}
	}
}

// Add enrolls an entry, overwriting any entry with the same name.
func (m *MockStore) Add(ctx context.Context, entry database.Entry) error {
	if m.AddError != nil {
		return m.AddError
	}
	if err := database.ValidateName(entry.Name); err != nil {
		return err
	}
	if len(entry.Encoding) == 0 {
		return fmt.Errorf("entry %q has an empty encoding", entry.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dim == 0 {
		m.dim = len(entry.Encoding)
	} else if len(entry.Encoding) != m.dim {
		return &database.ErrDimensionMismatch{Expected: m.dim, Actual: len(entry.Encoding)}
	}

	e := entry.Clone()
	if e.AddedAt.IsZero() {
		e.AddedAt = time.Now().UTC()
	}
	if _, exists := m.entries[e.Name]; !exists {
		m.order = append(m.order, e.Name)
	}
	m.entries[e.Name] = &e
	m.AddCalls = append(m.AddCalls, e.Name)
	return nil
}

// Get returns the entry for a name, or nil when absent.
func (m *MockStore) Get(ctx context.Context, name string) (*database.Entry, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[name]
	if !ok {
		return nil, nil
	}
	e := entry.Clone()
	return &e, nil
}

// Remove deletes a name and reports whether anything was removed.
func (m *MockStore) Remove(ctx context.Context, name string) (bool, error) {
	if m.RemoveError != nil {
		return false, m.RemoveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[name]; !ok {
		return false, nil
	}
	delete(m.entries, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.RemoveCalls = append(m.RemoveCalls, name)
	return true, nil
}

// Names lists enrolled names in insertion order.
func (m *MockStore) Names(ctx context.Context) ([]string, error) {
	if m.NamesError != nil {
		return nil, m.NamesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	return names, nil
}

// Entries returns a snapshot of all entries in insertion order.
func (m *MockStore) Entries(ctx context.Context) ([]database.Entry, error) {
	if m.EntriesError != nil {
		return nil, m.EntriesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]database.Entry, 0, len(m.order))
	for _, name := range m.order {
		entries = append(entries, m.entries[name].Clone())
	}
	return entries, nil
}

// Count returns the number of enrolled entries.
func (m *MockStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Clear removes every entry and resets the dimensionality.
func (m *MockStore) Clear(ctx context.Context) error {
	if m.ClearError != nil {
		return m.ClearError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*database.Entry)
	m.order = nil
	m.dim = 0
	return nil
}

// Save counts the call and returns the injected error, if any.
func (m *MockStore) Save(ctx context.Context) error {
	m.mu.Lock()
	m.SaveCalls++
	m.mu.Unlock()
	return m.SaveError
}

// Close returns the injected error, if any.
func (m *MockStore) Close() error {
	return m.CloseError
}

// FindNearest returns up to k entries ordered by ascending L2 distance to
// the probe, ties broken by insertion order.
func (m *MockStore) FindNearest(ctx context.Context, probe []float32, k int) ([]database.Entry, []float64, error) {
	if m.FindNearestError != nil {
		return nil, nil, m.FindNearestError
	}
	if k <= 0 {
		return nil, nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		entry    database.Entry
		distance float64
	}
	var candidates []scored
	for _, name := range m.order {
		entry := m.entries[name]
		d, err := database.EuclideanDistance(probe, entry.Encoding)
		if err != nil {
			return nil, nil, err
		}
		candidates = append(candidates, scored{entry: entry.Clone(), distance: d})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	entries := make([]database.Entry, len(candidates))
	distances := make([]float64, len(candidates))
	for i, c := range candidates {
		entries[i] = c.entry
		distances[i] = c.distance
	}
	return entries, distances, nil
}

// Verify interface compliance
var _ database.Store = (*MockStore)(nil)
var _ database.Searcher = (*MockStore)(nil)
