package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/metalogic-lab/metadiag/internal/cache"
	"github.com/metalogic-lab/metadiag/internal/logger"
	"github.com/metalogic-lab/metadiag/internal/model"
)

// Cached memoizes an engine. Safe because the contract requires identical
// input to yield an equivalent report. Cache failures degrade to a plain
// engine call.
type Cached struct {
	inner Engine
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps inner with a report cache.
func NewCached(inner Engine, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: c, ttl: ttl}
}

// Name returns the wrapped engine's identifier.
func (e *Cached) Name() string {
	return e.inner.Name()
}

// Analyze serves the report from cache when the same answers were analyzed
// before, otherwise delegates and stores the result.
func (e *Cached) Analyze(ctx context.Context, answers model.Answers) (*model.DiagnosisReport, error) {
	key := cache.Key(answers)

	if data, found := e.cache.Get(key); found {
		var report model.DiagnosisReport
		if err := json.Unmarshal(data, &report); err == nil {
			return &report, nil
		}
		// Unreadable entry: drop it and recompute.
		_ = e.cache.Delete(key)
	}

	report, err := e.inner.Analyze(ctx, answers)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(report); err == nil {
		if err := e.cache.Set(key, data, e.ttl); err != nil {
			logger.Log.WithError(err).Debug("cache report")
		}
	}
	return report, nil
}
