package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestLayout(t *testing.T, dir string) string {
	t.Helper()
	content := `output = "/out/movie.mkv"

[[tracks]]
source = "Source 1"
id = 0
type = "video"
codec = "V_MPEG4/ISO/AVC"
language = "eng"

[[tracks]]
source = "Source 2"
id = 1
type = "audio"
codec = "A_AC3"
language = "ja"

[[tracks]]
source = "External"
id = 0
type = "subtitles"
path = "/subs/movie.en.srt"
language = "eng"
sync_to = "Source 2"
forced = true
`
	path := filepath.Join(dir, "layout.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write layout: %v", err)
	}
	return path
}

func planArgs(layoutPath string, extra ...string) []string {
	args := []string{
		"plan", layoutPath,
		"--source", "Source 1=/media/ref.mkv",
		"--source", "Source 2=/media/sec.mkv",
		"--delay", "Source 2=-200.5",
		"--skip-probe",
	}
	return append(args, extra...)
}

func TestCLIPlanRendersTokens(t *testing.T) {
	env := setupCLITestEnv(t)
	layoutPath := writeTestLayout(t, env.baseDir)

	stdout, _, err := runCLI(t, planArgs(layoutPath), env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	requireContains(t, stdout, "/out/movie.mkv")
	requireContains(t, stdout, "--sync 0:+201")
	requireContains(t, stdout, "--sync 0:+1")
	requireContains(t, stdout, "--forced-display-flag 0:yes")
	requireContains(t, stdout, "--language 0:jpn")
	requireContains(t, stdout, "+201ms")
	requireContains(t, stdout, "Shift")
}

func TestCLIPlanRemuxZeroesDelays(t *testing.T) {
	env := setupCLITestEnv(t)
	layoutPath := writeTestLayout(t, env.baseDir)

	stdout, _, err := runCLI(t, planArgs(layoutPath, "--remux"), env.configPath)
	if err != nil {
		t.Fatalf("plan --remux: %v", err)
	}
	if strings.Contains(stdout, "--sync") {
		t.Fatalf("expected no sync tokens in a remux plan, got:\n%s", stdout)
	}
}

func TestCLIPlanJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	layoutPath := writeTestLayout(t, env.baseDir)

	stdout, _, err := runCLI(t, planArgs(layoutPath, "--json"), env.configPath)
	if err != nil {
		t.Fatalf("plan --json: %v", err)
	}

	var payload struct {
		Output      string   `json:"output"`
		GlobalShift int64    `json:"global_shift_ms"`
		Tokens      []string `json:"tokens"`
		Items       []struct {
			Source  string `json:"source"`
			DelayMs int64  `json:"delay_ms"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode plan output: %v", err)
	}
	if payload.Output != "/out/movie.mkv" {
		t.Fatalf("expected layout output, got %q", payload.Output)
	}
	if payload.GlobalShift != 201 {
		t.Fatalf("expected global shift 201, got %d", payload.GlobalShift)
	}
	if len(payload.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(payload.Items))
	}
	if payload.Items[0].DelayMs != 201 {
		t.Fatalf("expected reference delay 201, got %d", payload.Items[0].DelayMs)
	}
	if payload.Items[1].DelayMs != 1 {
		t.Fatalf("expected secondary delay 1, got %d", payload.Items[1].DelayMs)
	}
	if len(payload.Tokens) == 0 {
		t.Fatal("expected rendered tokens")
	}
}

func TestCLIPlanOutputOverride(t *testing.T) {
	env := setupCLITestEnv(t)
	layoutPath := writeTestLayout(t, env.baseDir)

	stdout, _, err := runCLI(t, planArgs(layoutPath, "--output", "/tmp/override.mkv"), env.configPath)
	if err != nil {
		t.Fatalf("plan --output: %v", err)
	}
	requireContains(t, stdout, "/tmp/override.mkv")
}

func TestCLIPlanMissingSourceBinding(t *testing.T) {
	env := setupCLITestEnv(t)
	layoutPath := writeTestLayout(t, env.baseDir)

	args := []string{
		"plan", layoutPath,
		"--source", "Source 1=/media/ref.mkv",
		"--delay", "Source 2=-200.5",
		"--skip-probe",
	}
	_, _, err := runCLI(t, args, env.configPath)
	if err == nil {
		t.Fatal("expected an error for an unbound source")
	}
	requireContains(t, err.Error(), "Source 2")
}

func TestCLIPlanRejectsBadPair(t *testing.T) {
	env := setupCLITestEnv(t)
	layoutPath := writeTestLayout(t, env.baseDir)

	_, _, err := runCLI(t, []string{"plan", layoutPath, "--source", "nonsense", "--skip-probe"}, env.configPath)
	if err == nil {
		t.Fatal("expected an error for a malformed pair")
	}
	requireContains(t, err.Error(), "NAME=VALUE")
}
