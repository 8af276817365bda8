// Package store persists the wizard snapshot. Persistence is an optimization,
// not a correctness requirement: Load never fails (it falls back to the
// default state) and Save never propagates errors to the caller.
package store

import "github.com/metalogic-lab/metadiag/internal/model"

// SnapshotKey is the fixed namespace the snapshot is stored under. It doubles
// as the file name for the disk store and the cache key for the memory store.
const SnapshotKey = "metaLogicDiagnosis"

// Store is the persistence boundary of the wizard.
type Store interface {
	// Load returns the persisted state, or the default state when the
	// snapshot is missing or corrupt. It never fails.
	Load() model.WizardState

	// Save overwrites the snapshot with the full state. Best-effort:
	// failures are logged and swallowed.
	Save(state model.WizardState)

	// Clear removes the snapshot.
	Clear()
}
