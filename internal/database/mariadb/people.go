package mariadb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/facegate/facegate/internal/database"
)

// PeopleStore is the MariaDB-backed implementation of database.Store. Every
// mutation is durable immediately, so Save is a no-op. Listing order is
// first-enrollment order: rows keep their id across overwrites, and all
// reads order by it.
type PeopleStore struct {
	pool *Pool
}

// NewPeopleStore creates a people store on top of an existing pool.
func NewPeopleStore(pool *Pool) *PeopleStore {
	return &PeopleStore{pool: pool}
}

func encodeVector(encoding []float32) (string, error) {
	data, err := json.Marshal(encoding)
	if err != nil {
		return "", fmt.Errorf("marshal encoding: %w", err)
	}
	return string(data), nil
}

func decodeVector(data string) ([]float32, error) {
	var encoding []float32
	if err := json.Unmarshal([]byte(data), &encoding); err != nil {
		return nil, fmt.Errorf("unmarshal encoding: %w", err)
	}
	return encoding, nil
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

	encoded, err := encodeVector(entry.Encoding)
	if err != nil {
		return err
	}

	tx, err := s.pool.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
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
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			encoding = VALUES(encoding),
			dim = VALUES(dim),
			source = VALUES(source),
			added_at = VALUES(added_at)
	`, entry.Name, encoded, len(entry.Encoding), entry.Source, addedAt)
	if err != nil {
		return fmt.Errorf("save person: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit person: %w", err)
	}
	return nil
}

// Get returns the entry for a name, or nil when absent. Name matching is
// byte-exact; the column uses a binary collation so MariaDB does not fold
// case.
func (s *PeopleStore) Get(ctx context.Context, name string) (*database.Entry, error) {
	var entry database.Entry
	var encoded string

	err := s.pool.db.QueryRowContext(ctx, `
		SELECT name, encoding, source, added_at
		FROM people
		WHERE BINARY name = ?
	`, name).Scan(&entry.Name, &encoded, &entry.Source, &entry.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query person: %w", err)
	}

	entry.Encoding, err = decodeVector(encoded)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove deletes a name and reports whether anything was removed.
func (s *PeopleStore) Remove(ctx context.Context, name string) (bool, error) {
	result, err := s.pool.db.ExecContext(ctx, "DELETE FROM people WHERE BINARY name = ?", name)
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
	rows, err := s.pool.db.QueryContext(ctx, "SELECT name FROM people ORDER BY id")
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
	rows, err := s.pool.db.QueryContext(ctx, `
		SELECT name, encoding, source, added_at
		FROM people
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var entries []database.Entry
	for rows.Next() {
		var entry database.Entry
		var encoded string

		if err := rows.Scan(&entry.Name, &encoded, &entry.Source, &entry.AddedAt); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}

		entry.Encoding, err = decodeVector(encoded)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return entries, nil
}

// Count returns the number of enrolled entries.
func (s *PeopleStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM people").Scan(&count); err != nil {
		return 0, fmt.Errorf("count people: %w", err)
	}
	return count, nil
}

// Clear removes every entry. With no rows left the next Add establishes a
// fresh dimensionality.
func (s *PeopleStore) Clear(ctx context.Context) error {
	if _, err := s.pool.db.ExecContext(ctx, "DELETE FROM people"); err != nil {
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

// Verify interface compliance
var _ database.Store = (*PeopleStore)(nil)
