package delay_test

import (
	"math"
	"testing"

	"lockstep/internal/delay"
)

func TestGlobalShift(t *testing.T) {
	tests := []struct {
		name   string
		delays map[string]float64
		want   int64
	}{
		{"empty", nil, 0},
		{"all positive", map[string]float64{"a": 100, "b": 3.2}, 0},
		{"mixed", map[string]float64{"a": 100, "b": -200.5}, 201},
		{"small negative", map[string]float64{"a": -0.2}, 1},
	}
	for _, tt := range tests {
		if got := delay.GlobalShift(tt.delays); got != tt.want {
			t.Fatalf("%s: expected shift %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestFinalizeRoundsEachSourceIndependently(t *testing.T) {
	raw := map[string]float64{
		"Source 2": 100.0,
		"Source 3": -200.5,
	}
	set := delay.Finalize(raw, "Source 1")

	if set.GlobalShiftMs != 201 {
		t.Fatalf("expected shift 201, got %d", set.GlobalShiftMs)
	}
	for source, pre := range raw {
		want := int64(math.Round(pre + set.GlobalShiftRaw))
		if got := set.Rounded[source]; got != want {
			t.Fatalf("%s: expected rounded %d, got %d", source, want, got)
		}
		if got := set.PreShift[source]; got != pre {
			t.Fatalf("%s: expected pre-shift %v, got %v", source, pre, got)
		}
	}
	if set.Rounded["Source 2"] != 301 {
		t.Fatalf("expected Source 2 at 301, got %d", set.Rounded["Source 2"])
	}
	if set.Rounded["Source 3"] != 1 {
		t.Fatalf("expected Source 3 at 1, got %d", set.Rounded["Source 3"])
	}
}

func TestFinalizeAddsReferenceEntry(t *testing.T) {
	set := delay.Finalize(map[string]float64{"Source 2": -200.5}, "Source 1")

	got, ok := set.Rounded["Source 1"]
	if !ok {
		t.Fatal("expected the reference source to have an entry")
	}
	if got != set.GlobalShiftMs {
		t.Fatalf("expected the reference pinned to the shift %d, got %d", set.GlobalShiftMs, got)
	}
}

func TestFormatDelay(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0ms"},
		{7, "+7ms"},
		{-7, "-7ms"},
		{1500, "+1500ms"},
	}
	for _, tt := range tests {
		if got := delay.FormatDelay(tt.ms); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}
