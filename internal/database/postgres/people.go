package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/facegate/facegate/internal/database"
)

// PeopleStore is the PostgreSQL-backed implementation of database.Store and
// database.Searcher. Every mutation is durable immediately, so Save is a
// no-op. Listing order is first-enrollment order: rows keep their id across
// overwrites, and all reads order by it.
type PeopleStore struct {
	pool *Pool
}

// NewPeopleStore creates a people store on top of an existing pool.
func NewPeopleStore(pool *Pool) *PeopleStore {
	return &PeopleStore{pool: pool}
}

// Add enrolls an entry, overwriting any entry with the same name. The first
// stored encoding establishes the dimensionality for the whole table; the
// check and the upsert share a transaction so concurrent writers cannot
// race past it.
func (s *PeopleStore) Add(ctx context.Context, entry database.Entry) error {
	if err := database.ValidateName(entry.Name); err != nil {
		return err
	}
	if len(entry.Encoding) == 0 {
		return fmt.Errorf("entry %q has an empty encoding", entry.Name)
	}

	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var dim int
	err = tx.QueryRowContext(ctx, "SELECT dim FROM people ORDER BY id LIMIT 1").Scan(&dim)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query dimensionality: %w", err)
	}
	if err == nil && dim != len(entry.Encoding) {
		return &database.ErrDimensionMismatch{Expected: dim, Actual: len(entry.Encoding)}
	}

	addedAt := entry.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO people (name, encoding, dim, source, added_at)
		VALUES ($1, $2::vector, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			encoding = EXCLUDED.encoding,
			dim = EXCLUDED.dim,
			source = EXCLUDED.source,
			added_at = EXCLUDED.added_at
	`, entry.Name, pgvector.NewVector(entry.Encoding), len(entry.Encoding), entry.Source, addedAt)
	if err != nil {
		return fmt.Errorf("save person: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit person: %w", err)
	}
	return nil
}

// Get returns the entry for a name, or nil when absent.
func (s *PeopleStore) Get(ctx context.Context, name string) (*database.Entry, error) {
	var entry database.Entry
	var vec pgvector.Vector

	err := s.pool.QueryRow(ctx, `
		SELECT name, encoding, source, added_at
		FROM people
		WHERE name = $1
	`, name).Scan(&entry.Name, &vec, &entry.Source, &entry.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query person: %w", err)
	}

	entry.Encoding = vec.Slice()
	return &entry, nil
}

// Remove deletes a name and reports whether anything was removed.
func (s *PeopleStore) Remove(ctx context.Context, name string) (bool, error) {
	result, err := s.pool.Exec(ctx, "DELETE FROM people WHERE name = $1", name)
	if err != nil {
		return false, fmt.Errorf("delete person: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete person: %w", err)
	}
	return affected > 0, nil
}

// Names lists enrolled names in first-enrollment order.
func (s *PeopleStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT name FROM people ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return names, nil
}

// Entries returns all entries in the same order as Names.
func (s *PeopleStore) Entries(ctx context.Context) ([]database.Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, encoding, source, added_at
		FROM people
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Count returns the number of enrolled entries.
func (s *PeopleStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM people").Scan(&count); err != nil {
		return 0, fmt.Errorf("count people: %w", err)
	}
	return count, nil
}

// Clear removes every entry. With no rows left the next Add establishes a
// fresh dimensionality.
func (s *PeopleStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM people"); err != nil {
		return fmt.Errorf("clear people: %w", err)
	}
	return nil
}

// Save is a no-op; every mutation is already durable.
func (s *PeopleStore) Save(ctx context.Context) error {
	return nil
}

// Close closes the underlying pool.
func (s *PeopleStore) Close() error {
	return s.pool.Close()
}

// Dim returns the dimensionality established by the first stored entry, or
// zero when the table is empty.
func (s *PeopleStore) Dim(ctx context.Context) (int, error) {
	var dim int
	err := s.pool.QueryRow(ctx, "SELECT dim FROM people ORDER BY id LIMIT 1").Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query dimensionality: %w", err)
	}
	return dim, nil
}

// FindNearest returns up to k entries ordered by ascending L2 distance to
// the probe, ties broken by first-enrollment order. An empty table returns
// no results and no error.
func (s *PeopleStore) FindNearest(ctx context.Context, probe []float32, k int) ([]database.Entry, []float64, error) {
	if k <= 0 {
		return nil, nil, nil
	}

	dim, err := s.Dim(ctx)
	if err != nil {
		return nil, nil, err
	}
	if dim == 0 {
		return nil, nil, nil
	}
	if len(probe) != dim {
		return nil, nil, &database.ErrDimensionMismatch{Expected: dim, Actual: len(probe)}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT name, encoding, source, added_at,
		       encoding <-> $1::vector AS distance
		FROM people
		ORDER BY distance, id
		LIMIT $2
	`, pgvector.NewVector(probe), k)
	if err != nil {
		return nil, nil, fmt.Errorf("query nearest people: %w", err)
	}
	defer rows.Close()

	var entries []database.Entry
	var distances []float64
	for rows.Next() {
		var entry database.Entry
		var vec pgvector.Vector
		var dist float64

		if err := rows.Scan(&entry.Name, &vec, &entry.Source, &entry.AddedAt, &dist); err != nil {
			return nil, nil, fmt.Errorf("scan person: %w", err)
		}

		entry.Encoding = vec.Slice()
		entries = append(entries, entry)
		distances = append(distances, dist)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate nearest people: %w", err)
	}

	return entries, distances, nil
}

func scanEntries(rows *sql.Rows) ([]database.Entry, error) {
	var entries []database.Entry

	for rows.Next() {
		var entry database.Entry
		var vec pgvector.Vector

		if err := rows.Scan(&entry.Name, &vec, &entry.Source, &entry.AddedAt); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}

		entry.Encoding = vec.Slice()
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}

	return entries, nil
}

// Verify interface compliance
var _ database.Store = (*PeopleStore)(nil)
var _ database.Searcher = (*PeopleStore)(nil)
