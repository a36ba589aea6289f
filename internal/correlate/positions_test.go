package correlate_test

import (
	"math"
	"testing"

	"lockstep/internal/correlate"
)

func TestPositionsSpreadEvenly(t *testing.T) {
	plan := correlate.DefaultPositionPlan()
	positions := plan.Positions(600)

	if len(positions) != 10 {
		t.Fatalf("expected 10 positions, got %d", len(positions))
	}
	if math.Abs(positions[0]-30.0) > 1e-9 {
		t.Fatalf("expected first position at 30s, got %v", positions[0])
	}
	if math.Abs(positions[9]-555.0) > 1e-9 {
		t.Fatalf("expected last position at 555s, got %v", positions[9])
	}
	for i := 1; i < len(positions); i++ {
		if positions[i] <= positions[i-1] {
			t.Fatalf("positions must ascend, got %v then %v", positions[i-1], positions[i])
		}
		// Every chunk must end inside the scan window.
		if positions[i]+plan.Duration > 570.0+1e-9 {
			t.Fatalf("position %v leaves the scan window", positions[i])
		}
	}
}

func TestPositionsSingleChunkCentered(t *testing.T) {
	plan := correlate.PositionPlan{Count: 1, Duration: 15, StartPct: 5, EndPct: 95}
	positions := plan.Positions(600)
	if len(positions) != 1 {
		t.Fatalf("expected one position, got %d", len(positions))
	}
	if math.Abs(positions[0]-292.5) > 1e-9 {
		t.Fatalf("expected centered position 292.5s, got %v", positions[0])
	}
}

func TestPositionsTooShort(t *testing.T) {
	plan := correlate.DefaultPositionPlan()
	if positions := plan.Positions(16); positions != nil {
		t.Fatalf("expected no positions for a 16s stream, got %v", positions)
	}
}

func TestPositionsTightWindow(t *testing.T) {
	plan := correlate.DefaultPositionPlan()
	positions := plan.Positions(100)
	if len(positions) != 10 {
		t.Fatalf("expected 10 positions, got %d", len(positions))
	}
	if math.Abs(positions[0]-5.0) > 1e-9 {
		t.Fatalf("expected first position at 5s, got %v", positions[0])
	}
	if math.Abs(positions[9]-80.0) > 1e-9 {
		t.Fatalf("expected last position at 80s, got %v", positions[9])
	}
}
