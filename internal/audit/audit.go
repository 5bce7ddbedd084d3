// Package audit provides an append-only journal of the files sitefix modified.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Dir is the tool's state directory at the site root. Site scans skip it.
const Dir = ".sitefix"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp time.Time              `json:"ts"`
	Run       string                 `json:"run"`
	Operation string                 `json:"op"` // rewrite, prune
	File      string                 `json:"file"`
	Passes    []string               `json:"passes,omitempty"` // For rewrites: passes that changed the file
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Logger handles writing to the audit log. All entries written through one
// Logger share its run ID.
type Logger struct {
	path    string
	run     string
	enabled bool
	mu      sync.Mutex
}

// New creates a new audit logger for the given site.
// If enabled is false, the logger will be a no-op.
func New(siteRoot string, enabled bool) *Logger {
	if !enabled {
		return &Logger{enabled: false}
	}

	return &Logger{
		path:    filepath.Join(siteRoot, Dir, "audit.log"),
		run:     uuid.NewString(),
		enabled: true,
	}
}

// Log writes an entry to the audit log.
func (l *Logger) Log(entry Entry) error {
	if l == nil || !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.Run = l.run

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	return nil
}

// LogRewrite logs a file rewritten by the given passes.
func (l *Logger) LogRewrite(file string, passes []string) error {
	return l.Log(Entry{
		Operation: "rewrite",
		File:      file,
		Passes:    passes,
	})
}

// LogPrune logs a removed export artifact.
func (l *Logger) LogPrune(file string) error {
	return l.Log(Entry{
		Operation: "prune",
		File:      file,
	})
}

// Read reads all entries from the audit log.
func (l *Logger) Read() ([]Entry, error) {
	if l == nil || !l.enabled {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue // Skip malformed entries
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ReadRun reads the entries written by one run.
func (l *Logger) ReadRun(run string) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}

	var filtered []Entry
	for _, entry := range all {
		if entry.Run == run {
			filtered = append(filtered, entry)
		}
	}

	return filtered, nil
}

// RunID returns the identifier stamped on this logger's entries.
func (l *Logger) RunID() string {
	if l == nil {
		return ""
	}
	return l.run
}

// Enabled returns true if the audit logger is enabled.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}
