package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/metalogic-lab/metadiag/internal/logger"
	"github.com/metalogic-lab/metadiag/internal/model"
)

// FileStore keeps the snapshot as a single JSON file in a directory,
// overwriting the prior value entirely on every save.
type FileStore struct {
	dir string
}

// NewFileStore creates a disk-backed store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, SnapshotKey+".json")
}

// Load reads and validates the snapshot. Missing file, malformed JSON, and
// structurally invalid snapshots all reset to the default state.
func (s *FileStore) Load() model.WizardState {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.WithError(err).Warn("read wizard snapshot")
		}
		return model.DefaultWizardState()
	}

	var state model.WizardState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Log.WithError(err).Warn("decode wizard snapshot, resetting")
		return model.DefaultWizardState()
	}
	if !state.Valid() {
		logger.Log.Warn("wizard snapshot failed validation, resetting")
		return model.DefaultWizardState()
	}
	return state
}

// Save writes the full state. Errors are logged and dropped; the in-memory
// session stays correct either way.
func (s *FileStore) Save(state model.WizardState) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		logger.Log.WithError(err).Warn("encode wizard snapshot")
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		logger.Log.WithError(err).Warn("create snapshot directory")
		return
	}
	if err := os.WriteFile(s.Path(), data, 0o644); err != nil {
		logger.Log.WithError(err).Warn("write wizard snapshot")
	}
}

// Clear removes the snapshot file if present.
func (s *FileStore) Clear() {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		logger.Log.WithError(err).Warn("remove wizard snapshot")
	}
}
