package mergeplan

import (
	"fmt"
	"strings"

	"lockstep/internal/delay"
	"lockstep/internal/language"
)

// Item is one resolved output track.
type Item struct {
	Source  string
	TrackID int
	Type    delay.TrackType
	Codec   string
	// Language is the normalized ISO 639-2 code, empty when unknown.
	Language string
	Name     string
	Default  bool
	Forced   bool
	// DelayMs is the resolved container delay handed to the
	// multiplexer.
	DelayMs int64
	// Path is the file the track is read from: the source container,
	// an external file, or an extracted override.
	Path string

	SteppingAdjusted bool
	FrameAdjusted    bool
}

// Plan is the ordered set of output tracks plus supporting files.
type Plan struct {
	Items       []Item
	Delays      delay.Set
	Output      string
	Chapters    string
	Attachments []string
}

// BuildInput carries everything plan construction needs.
type BuildInput struct {
	Layout *Layout
	// Sources maps source keys to container file paths.
	Sources map[string]string
	// Extracted maps ExtractKey results to corrected or extracted
	// track files used in place of the source container.
	Extracted map[string]string
	// Delays is the finalized delay set from analysis.
	Delays delay.Set
	// SubtitleDelays overrides the resolved delay for subtitle tracks
	// when a subtitle-specific sync pass produced one, keyed by source.
	SubtitleDelays map[string]int64
	// ContainerDelays maps source keys to per-track container delays
	// relative to video, in milliseconds, keyed by track id.
	ContainerDelays map[string]map[int]int64
}

// ExtractKey names a track in the extracted-files map.
func ExtractKey(source string, kind delay.TrackType, trackID int) string {
	return fmt.Sprintf("%s:%s:%d", source, kind, trackID)
}

// Build assembles a merge plan, resolving each layout entry's file
// path and delay.
func Build(in BuildInput) (*Plan, error) {
	return build(in, false)
}

// BuildRemux assembles a plan that keeps every track at zero delay,
// for jobs where only the reference source is present.
func BuildRemux(in BuildInput) (*Plan, error) {
	return build(in, true)
}

func build(in BuildInput, remux bool) (*Plan, error) {
	if in.Layout == nil || len(in.Layout.Tracks) == 0 {
		return nil, ErrEmptyLayout
	}

	items := make([]Item, 0, len(in.Layout.Tracks))
	for idx, tr := range in.Layout.Tracks {
		item, err := buildItem(idx, tr, in, remux)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &Plan{
		Items:       items,
		Delays:      in.Delays,
		Output:      strings.TrimSpace(in.Layout.Output),
		Chapters:    strings.TrimSpace(in.Layout.Chapters),
		Attachments: append([]string(nil), in.Layout.Attachments...),
	}, nil
}

func buildItem(idx int, tr LayoutTrack, in BuildInput, remux bool) (Item, error) {
	kind, err := parseTrackType(tr.Type)
	if err != nil {
		return Item{}, fmt.Errorf("track %d: %w", idx+1, err)
	}

	path, err := trackPath(idx, tr, kind, in)
	if err != nil {
		return Item{}, err
	}

	isDefault := idx == 0 && kind == delay.TrackVideo
	if tr.Default != nil {
		isDefault = *tr.Default
	}

	lang := strings.TrimSpace(tr.CustomLanguage)
	if lang == "" {
		lang = strings.TrimSpace(tr.Language)
	}
	if lang != "" {
		lang = language.Normalize(lang)
	}

	name := strings.TrimSpace(tr.CustomName)
	if name == "" {
		name = strings.TrimSpace(tr.Name)
	}

	item := Item{
		Source:           tr.Source,
		TrackID:          tr.ID,
		Type:             kind,
		Codec:            tr.Codec,
		Language:         lang,
		Name:             name,
		Default:          isDefault,
		Forced:           tr.Forced,
		Path:             path,
		SteppingAdjusted: tr.SteppingAdjusted,
		FrameAdjusted:    tr.FrameAdjusted,
	}
	if remux {
		return item, nil
	}

	item.DelayMs = resolveDelay(tr, kind, in)
	return item, nil
}

func trackPath(idx int, tr LayoutTrack, kind delay.TrackType, in BuildInput) (string, error) {
	var path string
	if tr.Source == SourceExternal {
		if strings.TrimSpace(tr.Path) == "" {
			return "", fmt.Errorf("track %d: %w", idx+1, ErrExternalTrackPath)
		}
		path = tr.Path
	} else {
		p, ok := in.Sources[tr.Source]
		if !ok {
			return "", fmt.Errorf("track %d: %w: %s", idx+1, ErrMissingSource, tr.Source)
		}
		path = p
	}

	if extracted, ok := in.Extracted[ExtractKey(tr.Source, kind, tr.ID)]; ok {
		path = extracted
	}
	return path, nil
}

func resolveDelay(tr LayoutTrack, kind delay.TrackType, in BuildInput) int64 {
	delayIn := delay.TrackInput{
		Type:             kind,
		Source:           tr.Source,
		SteppingAdjusted: tr.SteppingAdjusted,
		FrameAdjusted:    tr.FrameAdjusted,
		SyncTo:           tr.SyncTo,
	}
	if perTrack, ok := in.ContainerDelays[tr.Source]; ok {
		delayIn.ContainerDelayMs = perTrack[tr.ID]
	}
	resolved := delay.TrackDelay(delayIn, in.Delays)

	// A subtitle-specific sync pass beats the audio-derived delay, but
	// never an adjustment already baked into the file.
	if kind == delay.TrackSubtitles && !tr.SteppingAdjusted && !tr.FrameAdjusted {
		syncKey := tr.Source
		if tr.Source == SourceExternal && tr.SyncTo != "" {
			syncKey = tr.SyncTo
		}
		if d, ok := in.SubtitleDelays[syncKey]; ok {
			resolved = d
		}
	}
	return resolved
}

func parseTrackType(s string) (delay.TrackType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video":
		return delay.TrackVideo, nil
	case "audio":
		return delay.TrackAudio, nil
	case "subtitles", "subtitle":
		return delay.TrackSubtitles, nil
	}
	return "", fmt.Errorf("unknown track type %q", s)
}
