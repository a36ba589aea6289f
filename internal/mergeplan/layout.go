package mergeplan

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// SourceExternal marks layout tracks supplied as standalone files
// rather than tracks inside a known source container.
const SourceExternal = "External"

// Layout is a user-authored ordered track list for one merge.
type Layout struct {
	// Output is the container file the merge writes.
	Output string `toml:"output"`
	// Chapters optionally names a chapters XML file.
	Chapters string `toml:"chapters,omitempty"`
	// Attachments lists files attached to the output container.
	Attachments []string `toml:"attachments,omitempty"`
	// Tracks are the output tracks in their final order.
	Tracks []LayoutTrack `toml:"tracks"`
}

// LayoutTrack is one entry of a layout.
type LayoutTrack struct {
	// Source names the source the track comes from, or SourceExternal
	// for a standalone file.
	Source string `toml:"source"`
	// ID is the track id inside its source container.
	ID int `toml:"id"`
	// Type is video, audio, or subtitles.
	Type string `toml:"type"`
	// Codec carries the track's codec identifier from probing.
	Codec string `toml:"codec,omitempty"`
	// Language and Name carry the track's own metadata.
	Language string `toml:"language,omitempty"`
	Name     string `toml:"name,omitempty"`

	// Default overrides the default-track flag. Unset means the first
	// layout entry defaults when it is video.
	Default *bool `toml:"default,omitempty"`
	// Forced sets the forced-display flag on subtitle tracks.
	Forced bool `toml:"forced,omitempty"`
	// CustomLanguage and CustomName override the track metadata.
	CustomLanguage string `toml:"custom_language,omitempty"`
	CustomName     string `toml:"custom_name,omitempty"`

	// Path is the standalone file of an external track.
	Path string `toml:"path,omitempty"`
	// SyncTo binds an external subtitle to a source's resolved delay.
	SyncTo string `toml:"sync_to,omitempty"`

	// SteppingAdjusted and FrameAdjusted mark subtitle files whose
	// timestamps already carry the correction.
	SteppingAdjusted bool `toml:"stepping_adjusted,omitempty"`
	FrameAdjusted    bool `toml:"frame_adjusted,omitempty"`
}

// LoadLayout parses a layout TOML file.
func LoadLayout(path string) (*Layout, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout: %w", err)
	}
	defer file.Close()

	var layout Layout
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&layout); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return &layout, nil
}
