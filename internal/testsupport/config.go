package testsupport

import (
	"path/filepath"
	"testing"

	"lockstep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithStrategy overrides the correlation strategy on the test config.
func WithStrategy(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Analysis.Strategy = name
	}
}

// WithChunkPlan overrides the chunk count and duration on the test config.
func WithChunkPlan(count int, duration float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Analysis.ChunkCount = count
		cfg.Analysis.ChunkDuration = duration
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
