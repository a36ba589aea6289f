package correlate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"lockstep/internal/audio"
	"lockstep/internal/logging"
)

// Config controls a chunked correlation pass.
type Config struct {
	// Kind selects the correlation strategy.
	Kind Kind
	// ChunkDuration is the length of each compared chunk in seconds.
	ChunkDuration float64
	// MinMatchPct rejects chunks scoring below this match percentage.
	MinMatchPct float64
	// UsePeakFit refines sample-precision delays below one sample.
	UsePeakFit bool
	// Workers caps how many chunks are correlated concurrently. Zero or
	// negative means one worker per CPU.
	Workers int
	// Filter conditions both chunks before correlation. Nil skips
	// filtering.
	Filter *audio.FilterSpec
	// Logger receives per-chunk debug lines. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig is GCC-PHAT on unfiltered 15 second chunks with peak
// fitting, accepting matches of 5% and better.
func DefaultConfig() Config {
	return Config{
		Kind:          KindGCCPHAT,
		ChunkDuration: 15.0,
		MinMatchPct:   5.0,
		UsePeakFit:    true,
	}
}

type chunkJob struct {
	index     int
	startTime float64
}

// CorrelateChunks measures the delay of sec relative to ref at every
// start position. It returns exactly one result per position, in
// position order, with 1-based indices. Chunks that cannot be extracted
// or correlated come back rejected with the failure as their reason;
// only an invalid configuration fails the whole pass.
//
// Cancelling ctx stops new chunks from starting. Chunks already running
// finish, and positions never started come back rejected.
func CorrelateChunks(ctx context.Context, ref, sec *audio.Buffer, positions []float64, cfg Config) ([]ChunkResult, error) {
	if ref == nil || sec == nil {
		return nil, errors.New("correlating requires both audio buffers")
	}
	logger := logging.NewComponentLogger(cfg.Logger, "correlate")

	results := make([]ChunkResult, len(positions))
	if len(positions) == 0 {
		return results, nil
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(positions) {
		workers = len(positions)
	}
	strategies := make([]Strategy, workers)
	for i := range strategies {
		strat, err := New(cfg.Kind)
		if err != nil {
			return nil, err
		}
		strategies[i] = strat
	}

	jobs := make(chan chunkJob)
	var wg sync.WaitGroup
	for _, strat := range strategies {
		wg.Add(1)
		go func(strat Strategy) {
			defer wg.Done()
			for job := range jobs {
				results[job.index] = runChunk(strat, ref, sec, job, cfg)
				logChunk(logger, strat.Name(), results[job.index])
			}
		}(strat)
	}

	cancelled := false
	for i, start := range positions {
		if ctx.Err() != nil {
			cancelled = true
		}
		if !cancelled {
			select {
			case <-ctx.Done():
				cancelled = true
			case jobs <- chunkJob{index: i, startTime: start}:
				continue
			}
		}
		for j := i; j < len(positions); j++ {
			results[j] = rejectedChunk(j+1, positions[j], "analysis cancelled")
		}
		break
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		return results, ctx.Err()
	}
	return results, nil
}

func runChunk(strat Strategy, ref, sec *audio.Buffer, job chunkJob, cfg Config) ChunkResult {
	index := job.index + 1

	refChunk, err := ref.ExtractChunk(job.startTime, cfg.ChunkDuration)
	if err != nil {
		return rejectedChunk(index, job.startTime, fmt.Sprintf("extract reference chunk: %v", err))
	}
	secChunk, err := sec.ExtractChunk(job.startTime, cfg.ChunkDuration)
	if err != nil {
		return rejectedChunk(index, job.startTime, fmt.Sprintf("extract secondary chunk: %v", err))
	}
	if cfg.Filter != nil {
		refChunk.Condition(cfg.Filter)
		secChunk.Condition(cfg.Filter)
	}

	var res Result
	if cfg.UsePeakFit && cfg.Kind.SupportsPeakFit() {
		raw, err := strat.RawCorrelation(refChunk, secChunk)
		if err != nil {
			return rejectedChunk(index, job.startTime, err.Error())
		}
		res = FindAndFitPeak(raw, refChunk.SampleRate)
	} else {
		res, err = strat.Correlate(refChunk, secChunk)
		if err != nil {
			return rejectedChunk(index, job.startTime, err.Error())
		}
	}
	return newChunkResult(index, job.startTime, res, cfg.MinMatchPct)
}

func logChunk(logger *slog.Logger, strategy string, cr ChunkResult) {
	attrs := []logging.Attr{
		logging.String(logging.FieldStrategy, strategy),
		logging.Int(logging.FieldChunkIndex, cr.Index),
		logging.Float64("start_s", cr.StartTime),
		logging.Bool("accepted", cr.Accepted),
	}
	if cr.Accepted {
		attrs = append(attrs,
			logging.Float64("delay_ms", cr.Result.DelayMsRaw),
			logging.Float64("match_pct", cr.Result.MatchPct))
	} else {
		attrs = append(attrs, logging.String("reason", cr.RejectReason))
	}
	logger.Debug("chunk correlated", logging.Args(attrs...)...)
}
