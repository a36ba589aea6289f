// Package audio models decoded mono audio for correlation analysis.
//
// Buffer wraps a mono sample sequence with its sample rate and hands
// out fixed-duration Chunks anchored at a start time; extraction fails
// when a chunk would run past the buffer. Chunks keep their raw samples
// and, after conditioning, a filtered copy so later stages can choose
// either view.
//
// The filter preprocessor applies optional low-pass, high-pass, or
// band-pass conditioning built from cascaded second-order IIR sections.
// Filtering is an accuracy aid, not a correctness requirement: when
// coefficient construction fails for a cutoff/sample-rate pair the
// input is returned unfiltered.
package audio
