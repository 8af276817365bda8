package engine

import (
	"fmt"
	"strings"

	"github.com/metalogic-lab/metadiag/internal/cache"
	"github.com/metalogic-lab/metadiag/internal/model"
)

// New builds the engine selected by the configuration, wrapping it with the
// report cache when enabled.
func New(cfg *model.Config) (Engine, error) {
	var eng Engine

	switch strings.ToLower(cfg.Engine.Provider) {
	case "", "rules":
		eng = NewRuleEngine(cfg.Engine.SimulatedDelay)

	case "openai":
		e, err := NewOpenAIEngine(cfg.Engine)
		if err != nil {
			return nil, fmt.Errorf("openai engine: %w", err)
		}
		eng = e

	default:
		return nil, fmt.Errorf("unknown engine provider: %s (supported: rules, openai)", cfg.Engine.Provider)
	}

	if cfg.Cache.Enabled {
		layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		eng = NewCached(eng, layered, cfg.Cache.DiskTTL)
	}
	return eng, nil
}
