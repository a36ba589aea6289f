package delay

import (
	"fmt"
	"math"
)

// Set holds the resolved delays for every source of one job plus the
// uniform shift that keeps them non-negative.
type Set struct {
	// Reference names the source whose video track defines the output
	// timeline.
	Reference string
	// Rounded maps each source to the delay handed to the multiplexer,
	// in milliseconds, global shift included.
	Rounded map[string]int64
	// Raw keeps the unrounded shifted delays for diagnostics.
	Raw map[string]float64
	// PreShift keeps the measured delays before the shift was applied.
	PreShift map[string]float64
	// GlobalShiftMs is the uniform shift applied to every source.
	GlobalShiftMs int64
	// GlobalShiftRaw is the shift before integer conversion.
	GlobalShiftRaw float64
}

// GlobalShift returns the shift that keeps every delay non-negative:
// the ceiling of the most negative raw delay's magnitude, or zero when
// nothing is negative. Ceiling rounding never under-shifts, so no final
// delay can land below zero.
func GlobalShift(rawDelays map[string]float64) int64 {
	min := 0.0
	for _, d := range rawDelays {
		if d < min {
			min = d
		}
	}
	if min < 0 {
		return int64(math.Ceil(-min))
	}
	return 0
}

// Finalize applies the global shift to every measured raw delay and
// rounds each shifted value independently. The reference source always
// ends up with an entry, at exactly the shift, so later rule lookups
// never miss it.
func Finalize(rawDelays map[string]float64, reference string) Set {
	shift := GlobalShift(rawDelays)
	shiftRaw := float64(shift)

	set := Set{
		Reference:      reference,
		Rounded:        make(map[string]int64, len(rawDelays)+1),
		Raw:            make(map[string]float64, len(rawDelays)+1),
		PreShift:       make(map[string]float64, len(rawDelays)),
		GlobalShiftMs:  shift,
		GlobalShiftRaw: shiftRaw,
	}
	for source, raw := range rawDelays {
		set.PreShift[source] = raw
		set.Raw[source] = raw + shiftRaw
		set.Rounded[source] = int64(math.Round(raw + shiftRaw))
	}
	if reference != "" {
		if _, ok := set.Rounded[reference]; !ok {
			set.Rounded[reference] = shift
			set.Raw[reference] = shiftRaw
		}
	}
	return set
}

// FormatDelay renders a delay for logs and reports, with an explicit
// sign on non-zero values.
func FormatDelay(ms int64) string {
	switch {
	case ms == 0:
		return "0ms"
	case ms > 0:
		return fmt.Sprintf("+%dms", ms)
	default:
		return fmt.Sprintf("%dms", ms)
	}
}
