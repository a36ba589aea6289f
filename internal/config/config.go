package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Analysis contains configuration for chunked correlation.
type Analysis struct {
	Strategy      string  `toml:"strategy"`
	ChunkCount    int     `toml:"chunk_count"`
	ChunkDuration float64 `toml:"chunk_duration"`
	ScanStartPct  float64 `toml:"scan_start_pct"`
	ScanEndPct    float64 `toml:"scan_end_pct"`
	MinMatchPct   float64 `toml:"min_match_pct"`
	UsePeakFit    bool    `toml:"use_peak_fit"`
	SampleRate    int     `toml:"sample_rate"`
	Workers       int     `toml:"workers"`

	FilterMethod  string  `toml:"filter_method"`
	FilterLowCut  float64 `toml:"filter_low_cut"`
	FilterHighCut float64 `toml:"filter_high_cut"`
	FilterOrder   int     `toml:"filter_order"`
}

// Drift contains configuration for drift diagnosis.
type Drift struct {
	Quality           string  `toml:"quality"`
	EpsilonMs         float64 `toml:"epsilon_ms"`
	MinClusterSamples int     `toml:"min_cluster_samples"`
	MinAcceptedChunks int     `toml:"min_accepted_chunks"`
}

// Selection contains configuration for reducing per-chunk delays to one value.
type Selection struct {
	Method            string  `toml:"method"`
	MinAcceptedChunks int     `toml:"min_accepted_chunks"`
	StableRunLength   int     `toml:"stable_run_length"`
	ToleranceMs       float64 `toml:"tolerance_ms"`
}

// History contains configuration for the analysis run store.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for lockstep.
//
// Configuration sections by subsystem:
//   - Paths: state and log directories
//   - Logging: log format and level
//   - Analysis: correlation strategy, chunking, filtering
//   - Drift: diagnosis thresholds and clustering
//   - Selection: per-source delay reduction
//   - History: run persistence
type Config struct {
	Paths     Paths     `toml:"paths"`
	Logging   Logging   `toml:"logging"`
	Analysis  Analysis  `toml:"analysis"`
	Drift     Drift     `toml:"drift"`
	Selection Selection `toml:"selection"`
	History   History   `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lockstep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return
// reports the resolved path, the third whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lockstep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Analysis.Strategy = strings.ToLower(strings.TrimSpace(c.Analysis.Strategy))
	c.Analysis.FilterMethod = strings.ToLower(strings.TrimSpace(c.Analysis.FilterMethod))
	c.Drift.Quality = strings.ToLower(strings.TrimSpace(c.Drift.Quality))
	c.Selection.Method = strings.ToLower(strings.TrimSpace(c.Selection.Method))
	return nil
}

// EnsureDirectories creates the writable directories lockstep needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFprobeBinary returns the ffprobe executable name used for container probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// FFmpegBinary returns the ffmpeg executable name used for audio extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// MkvmergeBinary returns the mkvmerge executable name used to execute merge plans.
func (c *Config) MkvmergeBinary() string {
	return "mkvmerge"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
