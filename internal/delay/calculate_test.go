package delay_test

import (
	"testing"

	"lockstep/internal/delay"
)

func resolvedSet() delay.Set {
	return delay.Set{
		Reference:     "Source 1",
		GlobalShiftMs: 500,
		Rounded: map[string]int64{
			"Source 1": 500,
			"Source 2": 1500,
			"Source 3": 250,
		},
	}
}

func TestTrackDelayRules(t *testing.T) {
	set := resolvedSet()

	tests := []struct {
		name string
		in   delay.TrackInput
		want int64
	}{
		{
			name: "reference video takes the shift alone",
			in:   delay.TrackInput{Type: delay.TrackVideo, Source: "Source 1", ContainerDelayMs: 100},
			want: 500,
		},
		{
			name: "reference audio keeps its container offset",
			in:   delay.TrackInput{Type: delay.TrackAudio, Source: "Source 1", ContainerDelayMs: 100},
			want: 600,
		},
		{
			name: "reference subtitles take the shift alone",
			in:   delay.TrackInput{Type: delay.TrackSubtitles, Source: "Source 1", ContainerDelayMs: 40},
			want: 500,
		},
		{
			name: "synced source uses its correlation delay",
			in:   delay.TrackInput{Type: delay.TrackAudio, Source: "Source 2", ContainerDelayMs: 75},
			want: 1500,
		},
		{
			name: "stepping-adjusted subtitle is zero",
			in:   delay.TrackInput{Type: delay.TrackSubtitles, Source: "Source 2", SteppingAdjusted: true},
			want: 0,
		},
		{
			name: "frame-adjusted subtitle is zero",
			in:   delay.TrackInput{Type: delay.TrackSubtitles, Source: "Source 1", FrameAdjusted: true},
			want: 0,
		},
		{
			name: "adjustment flags only short-circuit subtitles",
			in:   delay.TrackInput{Type: delay.TrackAudio, Source: "Source 2", SteppingAdjusted: true},
			want: 1500,
		},
		{
			name: "external subtitle follows its sync target",
			in:   delay.TrackInput{Type: delay.TrackSubtitles, Source: "External", SyncTo: "Source 3"},
			want: 250,
		},
		{
			name: "external subtitle with unknown target falls back to the shift",
			in:   delay.TrackInput{Type: delay.TrackSubtitles, Source: "External", SyncTo: "Source 9"},
			want: 500,
		},
		{
			name: "unknown source defaults to zero",
			in:   delay.TrackInput{Type: delay.TrackAudio, Source: "Source 9"},
			want: 0,
		},
	}
	for _, tt := range tests {
		if got := delay.TrackDelay(tt.in, set); got != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}
