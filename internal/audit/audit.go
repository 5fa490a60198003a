// Package audit appends access decisions to a JSONL trail, one line per
// decision. Recording is best-effort by design: a failed write must never
// block or fail the decision it describes, so callers log and move on.
package audit

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds.
const (
	KindRecognize = "recognize"
	KindVerify    = "verify"
)

// Event is a single recorded decision.
type Event struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Kind     string    `json:"kind"`
	Subject  string    `json:"subject,omitempty"` // matched or claimed name
	Distance float64   `json:"distance"`
	Verdict  string    `json:"verdict"`
	Source   string    `json:"source,omitempty"` // image path or remote address
}

// Logger appends events to a file. Open("") returns a disabled logger that
// swallows events, so call sites need no conditionals.
type Logger struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// Open opens or creates the audit trail at path in append-only mode with
// owner-only permissions. An empty path returns a disabled logger.
func Open(path string) (*Logger, error) {
	if path == "" {
		return &Logger{}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating audit directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &Logger{file: f, enc: json.NewEncoder(f)}, nil
}

// Enabled reports whether events are being recorded.
func (l *Logger) Enabled() bool {
	return l != nil && l.file != nil
}

// Record writes one event. ID and Time are stamped when unset. A non-finite
// distance (the +Inf of an empty-database miss) is stored as -1 since JSON
// cannot carry infinities.
func (l *Logger) Record(ev Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	if math.IsInf(ev.Distance, 0) || math.IsNaN(ev.Distance) {
		ev.Distance = -1
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(ev); err != nil {
		return fmt.Errorf("writing audit event: %w", err)
	}
	return nil
}

// Close closes the trail. Safe on a disabled or nil logger.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
