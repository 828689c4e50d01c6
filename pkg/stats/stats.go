// Package stats keeps the hub's lifetime usage counters: how many sessions
// were ever created and how many devices ever entered one. The counters are
// advisory, persisted to a small JSON file that is loaded once at startup
// and rewritten on every update. Nothing in the hub depends on them.
package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
)

// Counters is the persisted shape of the stats file.
type Counters struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalSessions int64 `json:"totalSessions"`
}

// Store owns the counters and their file. All methods are safe for
// concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	c    Counters
}

// New creates a store starting from zero. An empty path keeps the counters
// in memory only.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the counters file at path. A missing file starts from zero; a
// file that exists but cannot be read or parsed is an error, and the caller
// decides whether to start over.
func Load(path string) (*Store, error) {
	s := New(path)
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stats file %q: %w", path, err)
	}
	if err := json.Unmarshal(raw, &s.c); err != nil {
		return nil, fmt.Errorf("failed to parse stats file %q: %w", path, err)
	}
	return s, nil
}

// RecordSessionCreated counts a new session and its creator.
func (s *Store) RecordSessionCreated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.TotalSessions++
	s.c.TotalUsers++
	s.persistLocked()
}

// RecordSessionJoined counts a device entering an existing session.
func (s *Store) RecordSessionJoined() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.TotalUsers++
	s.persistLocked()
}

// Snapshot returns the current counters.
func (s *Store) Snapshot() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c
}

// persistLocked rewrites the counters file. Failures are logged and the
// in-memory counters keep counting; the file is advisory. Caller holds mu.
func (s *Store) persistLocked() {
	if s.path == "" {
		return
	}

	raw, err := json.MarshalIndent(s.c, "", "  ")
	if err != nil {
		logger.Warn("failed to encode stats", logger.Err(err))
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		logger.Warn("failed to create stats directory",
			logger.Path(s.path), logger.Err(err))
		return
	}

	// Write-then-rename keeps the file whole if the process dies mid-write.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		logger.Warn("failed to write stats file", logger.Path(tmp), logger.Err(err))
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		logger.Warn("failed to replace stats file", logger.Path(s.path), logger.Err(err))
	}
}
