package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileDB is the canonical JSON-file-backed store. All state lives in memory
// behind a RWMutex; mutations touch memory only and nothing reaches disk
// until Save writes the whole database atomically. File handles are scoped
// to Open and Save, never held in between.
type FileDB struct {
	mu      sync.RWMutex
	path    string
	model   string
	dim     int // 0 until the first insert establishes it
	entries map[string]*Entry
	order   []string // insertion order, drives Names/Entries determinism
}

// Open loads the database file at path. A missing file is a valid empty
// database; a structurally invalid one fails with ErrCorruptDatabase and
// loads nothing.
func Open(path string) (*FileDB, error) {
	db := &FileDB{
		path:    path,
		entries: make(map[string]*Entry),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return db, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading database %s: %w", path, err)
	}

	var schema fileSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptDatabase, path, err)
	}
	if schema.Version != currentSchemaVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorruptDatabase, path, schema.Version)
	}
	if schema.Dim < 0 || (schema.Dim == 0 && len(schema.People) > 0) {
		return nil, fmt.Errorf("%w: %s: invalid dimension %d", ErrCorruptDatabase, path, schema.Dim)
	}

	for _, p := range schema.People {
		if err := ValidateName(p.Name); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorruptDatabase, path, err)
		}
		if _, dup := db.entries[p.Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate name %q", ErrCorruptDatabase, path, p.Name)
		}
		if len(p.Encoding) != schema.Dim {
			return nil, fmt.Errorf("%w: %s: entry %q has %d values, database dimension is %d",
				ErrCorruptDatabase, path, p.Name, len(p.Encoding), schema.Dim)
		}
		db.entries[p.Name] = &Entry{
			Name:     p.Name,
			Encoding: p.Encoding,
			Source:   p.Source,
			AddedAt:  p.AddedAt,
		}
		db.order = append(db.order, p.Name)
	}

	db.dim = schema.Dim
	db.model = schema.Model
	return db, nil
}

// Path returns the file the database loads from and saves to.
func (db *FileDB) Path() string {
	return db.path
}

// Dim returns the established dimensionality, 0 before the first insert.
func (db *FileDB) Dim() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.dim
}

// Model returns the encoder model recorded in the file, if any.
func (db *FileDB) Model() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.model
}

// SetModel records which encoder model the encodings come from. Advisory;
// persisted on the next Save.
func (db *FileDB) SetModel(model string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.model = model
}

// Add enrolls an entry, overwriting any existing entry with the same name.
// The first insert establishes the database dimensionality.
func (db *FileDB) Add(_ context.Context, entry Entry) error {
	if err := ValidateName(entry.Name); err != nil {
		return err
	}
	if len(entry.Encoding) == 0 {
		return fmt.Errorf("entry %q has an empty encoding", entry.Name)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.dim == 0 {
		db.dim = len(entry.Encoding)
	} else if len(entry.Encoding) != db.dim {
		return &ErrDimensionMismatch{Expected: db.dim, Actual: len(entry.Encoding)}
	}

	e := entry.Clone()
	if e.AddedAt.IsZero() {
		e.AddedAt = time.Now().UTC()
	}
	if _, exists := db.entries[e.Name]; !exists {
		db.order = append(db.order, e.Name)
	}
	db.entries[e.Name] = &e
	return nil
}

// Get returns a copy of the entry for name, or nil when absent.
func (db *FileDB) Get(_ context.Context, name string) (*Entry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	e, ok := db.entries[name]
	if !ok {
		return nil, nil
	}
	c := e.Clone()
	return &c, nil
}

// Remove deletes the entry for name, reporting whether anything was removed.
func (db *FileDB) Remove(_ context.Context, name string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.entries[name]; !ok {
		return false, nil
	}
	delete(db.entries, name)
	for i, n := range db.order {
		if n == name {
			db.order = append(db.order[:i], db.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Names lists enrolled names in insertion order.
func (db *FileDB) Names(_ context.Context) ([]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	names := make([]string, len(db.order))
	copy(names, db.order)
	return names, nil
}

// Entries returns a snapshot of all entries in insertion order. The
// snapshot is a copy: matching over it is never affected by concurrent
// mutations.
func (db *FileDB) Entries(_ context.Context) ([]Entry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	entries := make([]Entry, 0, len(db.order))
	for _, name := range db.order {
		entries = append(entries, db.entries[name].Clone())
	}
	return entries, nil
}

// Count returns the number of enrolled entries.
func (db *FileDB) Count(_ context.Context) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.entries), nil
}

// Clear removes every entry and resets the dimensionality. Like all
// mutations it only touches memory; Save persists the empty state.
func (db *FileDB) Clear(_ context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.entries = make(map[string]*Entry)
	db.order = nil
	db.dim = 0
	return nil
}

// Save writes the full database state atomically: serialize, write to a
// temp file in the destination directory, fsync, rename over the target.
// On failure the previous on-disk state is left intact and the error wraps
// ErrPersistence.
func (db *FileDB) Save(_ context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.saveLocked()
}

func (db *FileDB) saveLocked() error {
	schema := fileSchema{
		Version: currentSchemaVersion,
		Model:   db.model,
		Dim:     db.dim,
		People:  make([]fileEntry, 0, len(db.order)),
	}
	for _, name := range db.order {
		e := db.entries[name]
		schema.People = append(schema.People, fileEntry{
			Name:     e.Name,
			Encoding: e.Encoding,
			Source:   e.Source,
			AddedAt:  e.AddedAt,
		})
	}

	raw, err := json.MarshalIndent(&schema, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding database: %w", ErrPersistence, err)
	}

	dir := filepath.Dir(db.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrPersistence, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(db.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrPersistence, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %w", ErrPersistence, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: syncing %s: %w", ErrPersistence, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing %s: %w", ErrPersistence, tmpName, err)
	}

	if err := os.Rename(tmpName, db.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replacing %s: %w", ErrPersistence, db.path, err)
	}

	syncDir(dir)
	return nil
}

// syncDir fsyncs a directory so a rename survives power loss. Best-effort:
// some filesystems reject directory syncs.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// Close is a no-op: file handles are scoped to Open and Save.
func (db *FileDB) Close() error {
	return nil
}

// Verify interface compliance
var _ Store = (*FileDB)(nil)
