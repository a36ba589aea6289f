package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lockstep/internal/config"
	"lockstep/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// setupCLITestEnv builds a temp-dir config tuned for fast correlation
// over short fixtures and writes it where runCLI can load it.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Analysis.Strategy = "scc"
	cfg.Analysis.ChunkCount = 4
	cfg.Analysis.ChunkDuration = 0.5
	cfg.Analysis.SampleRate = 8000
	cfg.Analysis.UsePeakFit = false

	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[analysis]
strategy = %q
chunk_count = %d
chunk_duration = %v
sample_rate = %d
use_peak_fit = %v
`,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Analysis.Strategy,
		cfg.Analysis.ChunkCount,
		cfg.Analysis.ChunkDuration,
		cfg.Analysis.SampleRate,
		cfg.Analysis.UsePeakFit,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeDelayedPair writes a reference WAV and a copy whose content plays
// delaySamples later, both 8 seconds at 8 kHz.
func writeDelayedPair(t *testing.T, dir string, delaySamples int) (string, string) {
	t.Helper()
	signal := testsupport.NoiseSamples(64000, 21)
	shifted := testsupport.ShiftSamples(signal, delaySamples)

	refPath := filepath.Join(dir, "ref.wav")
	secPath := filepath.Join(dir, "sec.wav")
	testsupport.WriteWAV(t, refPath, 8000, signal)
	testsupport.WriteWAV(t, secPath, 8000, shifted)
	return refPath, secPath
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
