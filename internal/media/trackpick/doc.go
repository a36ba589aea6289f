// Package trackpick chooses which audio stream of a container to
// extract for correlation.
//
// Correlating the wrong pair of tracks produces a confident, wrong
// delay: a commentary track correlates poorly against a main mix, and
// two different-language dubs can disagree by a scene cut. The picker
// therefore prefers the requested language, then the main mix over
// commentaries (more channels, no commentary title), then lossless
// sources, which correlate cleanly and are held to tighter drift
// thresholds downstream.
//
// The package depends only on internal/media/ffprobe and
// internal/language.
package trackpick
