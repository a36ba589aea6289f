package config

const (
	defaultStateDir = "~/.local/share/lockstep"
	defaultLogDir   = "~/.local/share/lockstep/logs"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultStrategy      = "gccphat"
	defaultChunkCount    = 10
	defaultChunkDuration = 15.0
	defaultScanStartPct  = 5.0
	defaultScanEndPct    = 95.0
	defaultMinMatchPct   = 5.0
	defaultSampleRate    = 48000

	defaultFilterMethod  = "none"
	defaultFilterLowCut  = 300.0
	defaultFilterHighCut = 3400.0
	defaultFilterOrder   = 5

	defaultDriftQuality      = "normal"
	defaultDriftEpsilonMs    = 20.0
	defaultMinClusterSamples = 2
	defaultMinDriftChunks    = 6

	defaultSelectionMethod    = "mode"
	defaultSelectionMinChunks = 3
	defaultStableRunLength    = 3
	defaultToleranceMs        = 1.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Analysis: Analysis{
			Strategy:      defaultStrategy,
			ChunkCount:    defaultChunkCount,
			ChunkDuration: defaultChunkDuration,
			ScanStartPct:  defaultScanStartPct,
			ScanEndPct:    defaultScanEndPct,
			MinMatchPct:   defaultMinMatchPct,
			UsePeakFit:    true,
			SampleRate:    defaultSampleRate,
			FilterMethod:  defaultFilterMethod,
			FilterLowCut:  defaultFilterLowCut,
			FilterHighCut: defaultFilterHighCut,
			FilterOrder:   defaultFilterOrder,
		},
		Drift: Drift{
			Quality:           defaultDriftQuality,
			EpsilonMs:         defaultDriftEpsilonMs,
			MinClusterSamples: defaultMinClusterSamples,
			MinAcceptedChunks: defaultMinDriftChunks,
		},
		Selection: Selection{
			Method:            defaultSelectionMethod,
			MinAcceptedChunks: defaultSelectionMinChunks,
			StableRunLength:   defaultStableRunLength,
			ToleranceMs:       defaultToleranceMs,
		},
		History: History{
			Enabled: true,
		},
	}
}
