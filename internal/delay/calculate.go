package delay

// TrackType identifies the kind of track a delay applies to.
type TrackType string

const (
	TrackVideo     TrackType = "video"
	TrackAudio     TrackType = "audio"
	TrackSubtitles TrackType = "subtitles"
)

// TrackInput describes one output track for delay resolution.
type TrackInput struct {
	Type   TrackType
	Source string
	// ContainerDelayMs is the track's container delay relative to its
	// source's video track, in milliseconds. Only reference audio
	// consults it.
	ContainerDelayMs int64
	// SteppingAdjusted and FrameAdjusted mark subtitle files whose
	// timestamps already encode the correction.
	SteppingAdjusted bool
	FrameAdjusted    bool
	// SyncTo binds an external subtitle to a specific source's delay.
	SyncTo string
}

// TrackDelay resolves the final container delay for one track. Rules
// apply in order, first match wins:
//
//  1. A stepping- or frame-adjusted subtitle takes zero. Its timestamps
//     already carry the correction; any further delay would apply it
//     twice.
//  2. An external subtitle with a sync target takes the target source's
//     resolved delay, or the global shift when the target has no entry.
//  3. Reference video takes the global shift alone; its container delay
//     is a playback artifact, not timing, because the reference video
//     defines the timeline. Reference audio adds its relative container
//     delay to the shift, preserving the source's own internal A/V
//     sync. Reference subtitles take the shift alone, aligning to video.
//  4. Every other track takes its source's resolved correlation delay,
//     which already embeds the shift, or zero for an unknown source.
func TrackDelay(in TrackInput, set Set) int64 {
	if in.Type == TrackSubtitles && (in.SteppingAdjusted || in.FrameAdjusted) {
		return 0
	}

	if in.SyncTo != "" {
		if d, ok := set.Rounded[in.SyncTo]; ok {
			return d
		}
		return set.GlobalShiftMs
	}

	if in.Source == set.Reference {
		switch in.Type {
		case TrackVideo:
			return set.GlobalShiftMs
		case TrackAudio:
			return in.ContainerDelayMs + set.GlobalShiftMs
		case TrackSubtitles:
			return set.GlobalShiftMs
		}
	}

	if d, ok := set.Rounded[in.Source]; ok {
		return d
	}
	return 0
}
