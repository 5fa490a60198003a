package database

import (
	"context"
	"fmt"
	"strings"
)

// Store is the persistence contract shared by the file, PostgreSQL and
// MariaDB backends. All implementations enforce the same rules: names are
// unique, case-sensitive and validated by ValidateName; the first stored
// encoding establishes the dimensionality and every later encoding must
// match it exactly; adding an existing name overwrites its encoding.
type Store interface {
	// Add enrolls an entry, overwriting any entry with the same name.
	Add(ctx context.Context, entry Entry) error
	// Get returns the entry for a name, or nil when absent.
	Get(ctx context.Context, name string) (*Entry, error)
	// Remove deletes a name and reports whether anything was removed.
	// Removing a missing name is (false, nil), not an error.
	Remove(ctx context.Context, name string) (bool, error)
	// Names lists enrolled names in the store's deterministic order.
	Names(ctx context.Context) ([]string, error)
	// Entries returns a snapshot of all entries in the same order as Names.
	// The snapshot is a copy and stays valid across later mutations.
	Entries(ctx context.Context) ([]Entry, error)
	// Count returns the number of enrolled entries.
	Count(ctx context.Context) (int, error)
	// Clear removes every entry and resets the dimensionality.
	Clear(ctx context.Context) error
	// Save persists pending state. The file backend writes atomically;
	// SQL backends are already durable and return nil.
	Save(ctx context.Context) error
	// Close releases underlying resources.
	Close() error
}

// Searcher is implemented by stores that answer nearest-neighbor queries
// natively (pgvector). Callers fall back to the exact matcher when a store
// does not implement it.
type Searcher interface {
	// FindNearest returns up to k entries ordered by ascending L2 distance
	// to the probe, ties broken deterministically.
	FindNearest(ctx context.Context, probe []float32, k int) ([]Entry, []float64, error)
}

// ValidateName rejects names that cannot serve as identity keys: empty
// strings and names with leading or trailing whitespace. Matching is
// otherwise exact and case sensitive; no normalization is applied.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q has leading or trailing whitespace", ErrInvalidName, name)
	}
	return nil
}
