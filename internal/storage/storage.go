// Package storage persists phase-contract session records on the local
// filesystem under <root>/<marker>/<session_id>/state.json.
package storage

import (
	"path/filepath"

	"github.com/boshu2/conductor/internal/tplan"
)

const (
	// DefaultMarkerDir is the root marker directory beneath a project root.
	DefaultMarkerDir = ".t-plan"

	// StateFile is the record file name inside a session directory.
	StateFile = "state.json"

	// GitignoreFile keeps session artifacts out of version control.
	GitignoreFile = ".gitignore"

	// gitignoreContent ignores everything in the marker directory but itself.
	gitignoreContent = "*\n!.gitignore\n"
)

// StateStore reads and writes session records. The zero value is not usable;
// construct with NewStateStore.
type StateStore struct {
	// MarkerDir is the directory name under a project root (e.g., .t-plan).
	MarkerDir string
}

// StateStoreOption configures a StateStore instance.
type StateStoreOption func(*StateStore)

// WithMarkerDir sets the marker directory name.
func WithMarkerDir(dir string) StateStoreOption {
	return func(s *StateStore) {
		if dir != "" {
			s.MarkerDir = dir
		}
	}
}

// NewStateStore creates a store rooted at the default marker directory.
func NewStateStore(opts ...StateStoreOption) *StateStore {
	s := &StateStore{MarkerDir: DefaultMarkerDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarkerRoot returns <root>/<marker>.
func (s *StateStore) MarkerRoot(root string) string {
	return filepath.Join(root, s.MarkerDir)
}

// SessionDir returns <root>/<marker>/<sessionID>. No I/O.
func (s *StateStore) SessionDir(root, sessionID string) string {
	return filepath.Join(root, s.MarkerDir, sessionID)
}

// StatePath returns the record path inside a session directory.
func StatePath(sessionDir string) string {
	return filepath.Join(sessionDir, StateFile)
}

// SessionSummary pairs a record with the directory it was read from.
type SessionSummary struct {
	Dir   string       `json:"dir" yaml:"dir"`
	State *tplan.State `json:"state" yaml:"state"`
}
