// Package cache memoizes diagnosis reports. The analysis engine is idempotent
// for identical input, so a report can be served from cache keyed by the
// answers snapshot it was derived from.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/metalogic-lab/metadiag/internal/model"
)

// Cache is the storage interface shared by the memory, disk, and layered
// implementations.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a content-addressed cache key from an answers snapshot. Pain
// points are sorted first: their insertion order is irrelevant to the
// diagnosis and must not change the key.
func Key(a model.Answers) string {
	canonical := a.Clone()
	sort.Slice(canonical.PainPoints, func(i, j int) bool {
		return canonical.PainPoints[i] < canonical.PainPoints[j]
	})

	// Marshaling a fixed struct with ordered fields is deterministic.
	data, err := json.Marshal(canonical)
	if err != nil {
		data = []byte{}
	}

	hash := sha256.Sum256(data)
	return "metadiag:v1:" + hex.EncodeToString(hash[:])
}
