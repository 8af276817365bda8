package store

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/metalogic-lab/metadiag/internal/model"
)

// MemoryStore holds the snapshot in process memory. Used by tests and by
// one-shot runs where nothing should touch the disk.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an in-memory store with no expiration.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Load returns the stored state or the default when nothing was saved.
func (s *MemoryStore) Load() model.WizardState {
	val, found := s.cache.Get(SnapshotKey)
	if !found {
		return model.DefaultWizardState()
	}
	state, ok := val.(model.WizardState)
	if !ok || !state.Valid() {
		return model.DefaultWizardState()
	}
	return state
}

// Save stores a deep copy so later wizard mutations cannot alias it.
func (s *MemoryStore) Save(state model.WizardState) {
	s.cache.Set(SnapshotKey, state.Clone(), gocache.NoExpiration)
}

// Clear drops the snapshot.
func (s *MemoryStore) Clear() {
	s.cache.Delete(SnapshotKey)
}
