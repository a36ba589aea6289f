package main

import (
	"encoding/json"
	"testing"
)

func TestCLIDepsListsTools(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, _ := runCLI(t, []string{"deps"}, env.configPath)

	requireContains(t, stdout, "ffprobe")
	requireContains(t, stdout, "FFmpeg")
	requireContains(t, stdout, "mkvmerge")
}

func TestCLIDepsJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, _ := runCLI(t, []string{"--json", "deps"}, env.configPath)

	var payload struct {
		Tools []struct {
			Name      string `json:"name"`
			Optional  bool   `json:"optional"`
			Available bool   `json:"available"`
		} `json:"tools"`
		Ready bool `json:"ready"`
	}
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode deps JSON: %v\n%s", err, stdout)
	}
	if len(payload.Tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(payload.Tools))
	}
	if payload.Tools[0].Name != "ffprobe" || payload.Tools[0].Optional {
		t.Fatalf("expected required ffprobe first, got %+v", payload.Tools[0])
	}
	if !payload.Tools[2].Optional {
		t.Fatalf("expected mkvmerge to be optional, got %+v", payload.Tools[2])
	}
}
