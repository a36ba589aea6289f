package mergeplan_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lockstep/internal/mergeplan"
)

func writeLayout(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write layout: %v", err)
	}
	return path
}

func TestLoadLayout(t *testing.T) {
	path := writeLayout(t, `
output = "merged.mkv"
chapters = "chapters.xml"
attachments = ["cover.jpg"]

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
language = "ja"
custom_name = "Japanese 5.1"

[[tracks]]
source = "External"
id = 0
type = "subtitles"
path = "movie.en.srt"
sync_to = "Source 2"
default = false
forced = true
`)

	layout, err := mergeplan.LoadLayout(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if layout.Output != "merged.mkv" {
		t.Fatalf("expected output merged.mkv, got: %q", layout.Output)
	}
	if layout.Chapters != "chapters.xml" {
		t.Fatalf("expected chapters file, got: %q", layout.Chapters)
	}
	if len(layout.Attachments) != 1 || layout.Attachments[0] != "cover.jpg" {
		t.Fatalf("expected one attachment, got: %v", layout.Attachments)
	}
	if len(layout.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got: %d", len(layout.Tracks))
	}

	if layout.Tracks[1].CustomName != "Japanese 5.1" {
		t.Fatalf("expected custom name parsed, got: %q", layout.Tracks[1].CustomName)
	}

	external := layout.Tracks[2]
	if external.Source != mergeplan.SourceExternal {
		t.Fatalf("expected external source, got: %q", external.Source)
	}
	if external.SyncTo != "Source 2" {
		t.Fatalf("expected sync target parsed, got: %q", external.SyncTo)
	}
	if external.Default == nil || *external.Default {
		t.Fatalf("expected explicit default=false, got: %v", external.Default)
	}
	if !external.Forced {
		t.Fatalf("expected forced flag parsed, got: %+v", external)
	}
}

func TestLoadLayoutLeavesDefaultUnset(t *testing.T) {
	path := writeLayout(t, `
output = "merged.mkv"

[[tracks]]
source = "Source 1"
id = 0
type = "video"
`)

	layout, err := mergeplan.LoadLayout(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if layout.Tracks[0].Default != nil {
		t.Fatalf("expected unset default to stay nil, got: %v", *layout.Tracks[0].Default)
	}
}

func TestLoadLayoutRejectsUnknownFields(t *testing.T) {
	path := writeLayout(t, `
output = "merged.mkv"
bogus = 1

[[tracks]]
source = "Source 1"
id = 0
type = "video"
`)

	_, err := mergeplan.LoadLayout(path)
	if err == nil || !strings.Contains(err.Error(), "parse layout") {
		t.Fatalf("expected unknown field rejection, got: %v", err)
	}
}

func TestLoadLayoutMissingFile(t *testing.T) {
	_, err := mergeplan.LoadLayout(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil || !strings.Contains(err.Error(), "open layout") {
		t.Fatalf("expected open error, got: %v", err)
	}
}
