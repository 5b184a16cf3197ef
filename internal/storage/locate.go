package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/boshu2/conductor/internal/worker"
)

// FindSessionDir walks from start up to the filesystem root looking for
// <dir>/<marker>/<sessionID>/state.json and returns the first session
// directory holding one. The closest ancestor wins.
func (s *StateStore) FindSessionDir(start, sessionID string) (string, bool) {
	if start == "" || sessionID == "" {
		return "", false
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		dir = filepath.Clean(start)
	}

	for {
		sessionDir := s.SessionDir(dir, sessionID)
		if info, err := os.Stat(StatePath(sessionDir)); err == nil && info.Mode().IsRegular() {
			return sessionDir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false // Reached filesystem root
		}
		dir = parent
	}
}

// FindFirstSessionDir searches each candidate's ancestry in order.
func (s *StateStore) FindFirstSessionDir(candidates []string, sessionID string) (string, bool) {
	for _, candidate := range candidates {
		if dir, ok := s.FindSessionDir(candidate, sessionID); ok {
			return dir, true
		}
	}
	return "", false
}

// ListSessions reads every record under <root>/<marker>, newest update first.
// Directories without a readable record are skipped.
func (s *StateStore) ListSessions(root string) ([]SessionSummary, error) {
	markerRoot := s.MarkerRoot(root)
	entries, err := os.ReadDir(markerRoot)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", markerRoot, err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(markerRoot, e.Name()))
		}
	}

	pool := worker.NewPool[SessionSummary](0)
	results := pool.Process(dirs, func(dir string) (SessionSummary, error) {
		st, err := ReadState(dir)
		if err != nil {
			return SessionSummary{}, err
		}
		return SessionSummary{Dir: dir, State: st}, nil
	})

	summaries := make([]SessionSummary, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		summaries = append(summaries, r.Value)
	}

	// ISO-8601 UTC timestamps sort lexically.
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].State.UpdatedAt > summaries[j].State.UpdatedAt
	})
	return summaries, nil
}
