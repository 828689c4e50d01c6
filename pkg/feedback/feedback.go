// Package feedback persists user-submitted ratings as an append-only JSONL
// log, one entry per line. Entries are never rewritten or deleted by the
// hub; the file is a plain artifact meant to be read by humans or scripts.
package feedback

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Entry is one submitted piece of feedback.
type Entry struct {
	Rating     int       `json:"rating"`
	Feedback   string    `json:"feedback"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Log appends entries to a JSONL file. All methods are safe for concurrent
// use.
type Log struct {
	mu   sync.Mutex
	path string
}

// NewLog creates a log writing to path.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Append records one entry with the current time and returns it.
func (l *Log) Append(rating int, text string) (Entry, error) {
	entry := Entry{
		Rating:     rating,
		Feedback:   text,
		ReceivedAt: time.Now().UTC(),
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode feedback entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return Entry{}, fmt.Errorf("failed to create feedback directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to open feedback log %q: %w", l.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return Entry{}, fmt.Errorf("failed to append feedback entry: %w", err)
	}
	return entry, nil
}

// Entries reads the whole log back, oldest first. A missing file is an
// empty log.
func (l *Log) Entries() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback log %q: %w", l.path, err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("failed to parse feedback entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback log %q: %w", l.path, err)
	}
	return entries, nil
}
