package config

import (
	"fmt"
	"sort"
	"strings"
)

var knownStrategies = map[string]struct{}{
	"scc":         {},
	"gccphat":     {},
	"scot":        {},
	"whitened":    {},
	"mfccdtw":     {},
	"onset":       {},
	"spectrogram": {},
}

var knownFilterMethods = map[string]struct{}{
	"none":     {},
	"lowpass":  {},
	"highpass": {},
	"bandpass": {},
}

var knownSelectionMethods = map[string]struct{}{
	"mode":        {},
	"average":     {},
	"firststable": {},
}

var knownQualities = map[string]struct{}{
	"strict":  {},
	"normal":  {},
	"lenient": {},
}

// Validate checks the configuration for values the analyzer cannot work with.
func (c *Config) Validate() error {
	if _, ok := knownStrategies[c.Analysis.Strategy]; !ok {
		return fmt.Errorf("config: unknown strategy %q (expected one of %s)", c.Analysis.Strategy, joinKeys(knownStrategies))
	}
	if _, ok := knownFilterMethods[c.Analysis.FilterMethod]; !ok {
		return fmt.Errorf("config: unknown filter method %q (expected one of %s)", c.Analysis.FilterMethod, joinKeys(knownFilterMethods))
	}
	if _, ok := knownSelectionMethods[c.Selection.Method]; !ok {
		return fmt.Errorf("config: unknown selection method %q (expected one of %s)", c.Selection.Method, joinKeys(knownSelectionMethods))
	}
	if _, ok := knownQualities[c.Drift.Quality]; !ok {
		return fmt.Errorf("config: unknown drift quality %q (expected one of %s)", c.Drift.Quality, joinKeys(knownQualities))
	}
	if c.Analysis.ChunkCount <= 0 {
		return fmt.Errorf("config: chunk_count must be positive, got %d", c.Analysis.ChunkCount)
	}
	if c.Analysis.ChunkDuration <= 0 {
		return fmt.Errorf("config: chunk_duration must be positive, got %v", c.Analysis.ChunkDuration)
	}
	if c.Analysis.ScanStartPct < 0 || c.Analysis.ScanEndPct > 100 || c.Analysis.ScanStartPct >= c.Analysis.ScanEndPct {
		return fmt.Errorf("config: scan window %v%%..%v%% is not a valid range", c.Analysis.ScanStartPct, c.Analysis.ScanEndPct)
	}
	if c.Analysis.MinMatchPct < 0 || c.Analysis.MinMatchPct > 100 {
		return fmt.Errorf("config: min_match_pct must be within 0..100, got %v", c.Analysis.MinMatchPct)
	}
	if c.Analysis.SampleRate <= 0 {
		return fmt.Errorf("config: sample_rate must be positive, got %d", c.Analysis.SampleRate)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Analysis.Workers)
	}
	if c.Analysis.FilterOrder <= 0 {
		return fmt.Errorf("config: filter_order must be positive, got %d", c.Analysis.FilterOrder)
	}
	if c.Analysis.FilterMethod == "bandpass" && c.Analysis.FilterLowCut >= c.Analysis.FilterHighCut {
		return fmt.Errorf("config: band-pass low cut %v must stay below high cut %v", c.Analysis.FilterLowCut, c.Analysis.FilterHighCut)
	}
	if c.Drift.EpsilonMs <= 0 {
		return fmt.Errorf("config: epsilon_ms must be positive, got %v", c.Drift.EpsilonMs)
	}
	if c.Drift.MinClusterSamples <= 0 {
		return fmt.Errorf("config: min_cluster_samples must be positive, got %d", c.Drift.MinClusterSamples)
	}
	if c.Selection.ToleranceMs < 0 {
		return fmt.Errorf("config: tolerance_ms must not be negative, got %v", c.Selection.ToleranceMs)
	}
	return nil
}

func joinKeys(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
