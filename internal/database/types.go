package database

import (
	"time"
)

// Entry represents a single enrolled identity: a unique name bound to one
// face encoding. Names are exact, case-sensitive keys.
type Entry struct {
	Name     string
	Encoding []float32
	Source   string // origin reference, e.g. image path or camera ID
	AddedAt  time.Time
}

// Clone returns a deep copy of the entry. Stores hand out clones so callers
// never alias internal state.
func (e Entry) Clone() Entry {
	c := e
	c.Encoding = make([]float32, len(e.Encoding))
	copy(c.Encoding, e.Encoding)
	return c
}

// MatchResult is the outcome of a nearest-neighbor lookup. An empty Name
// means the database had no entries and Distance is +Inf; empty names are
// rejected at insert time, so the empty string is unambiguous.
type MatchResult struct {
	Name     string
	Distance float64
}

// Found reports whether the lookup produced a candidate.
func (m MatchResult) Found() bool {
	return m.Name != ""
}

// RankedMatch is a match with its 1-based position in a top-K listing.
type RankedMatch struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Rank     int     `json:"rank"`
}

// fileSchema is the on-disk JSON layout of the file-backed database.
// Dim is authoritative: every encoding in People must have exactly that
// length. Model records which encoder produced the vectors (advisory).
type fileSchema struct {
	Version int         `json:"version"`
	Model   string      `json:"model,omitempty"`
	Dim     int         `json:"dim"`
	People  []fileEntry `json:"people"`
}

type fileEntry struct {
	Name     string    `json:"name"`
	Encoding []float32 `json:"encoding"`
	Source   string    `json:"source,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

const currentSchemaVersion = 1
