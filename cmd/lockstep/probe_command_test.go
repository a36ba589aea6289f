package main

import (
	"os/exec"
	"path/filepath"
	"testing"

	"lockstep/internal/testsupport"
)

func TestCLIProbeWAV(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}

	env := setupCLITestEnv(t)
	wavPath := filepath.Join(env.baseDir, "probe.wav")
	testsupport.WriteWAV(t, wavPath, 8000, testsupport.NoiseSamples(8000, 5))

	stdout, _, err := runCLI(t, []string{"probe", wavPath}, env.configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, stdout, "audio")
	requireContains(t, stdout, "1 audio")
}

func TestCLIProbeMissingFile(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}

	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"probe", filepath.Join(env.baseDir, "missing.mkv")}, env.configPath)
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
