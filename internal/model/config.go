package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the full runtime configuration tree.
type Config struct {
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Engine    EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
}

// StorageConfig locates the wizard snapshot on disk.
type StorageConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// EngineConfig selects and tunes the analysis engine.
type EngineConfig struct {
	// Provider selects the engine: "" or "rules" for the deterministic rule
	// engine, "openai" for the model-backed engine.
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model is the chat model used by the model-backed engine.
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey is usually supplied via OPENAI_API_KEY rather than the file.
	APIKey string `yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the API endpoint (proxies, compatible gateways).
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Timeout bounds a single analysis call; expiry surfaces as an
	// analysis-unavailable error, never as a partial report.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`

	// SimulatedDelay makes the rule engine behave like a remote call.
	SimulatedDelay time.Duration `yaml:"simulated_delay" mapstructure:"simulated_delay"`
}

// CacheConfig tunes the report cache. Identical answers always produce an
// identical report, so caching is safe for both engines.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig throttles model-backed analyses in batch mode.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults. State and cache live under
// ~/.metadiag.
func DefaultConfig() *Config {
	base := ".metadiag"
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".metadiag")
	}

	return &Config{
		Storage: StorageConfig{
			Dir: base,
		},
		Engine: EngineConfig{
			Provider:  "",
			Model:     "gpt-4o-mini",
			Timeout:   30 * time.Second,
			MaxTokens: 1200,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
