package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lockstep/internal/audio"
	"lockstep/internal/correlate"
	"lockstep/internal/delay"
	"lockstep/internal/drift"
	"lockstep/internal/history"
	"lockstep/internal/logging"
	"lockstep/internal/media/wavfile"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var strategyFlag string
	var chunksFlag int
	var durationFlag float64
	var fpsFlag float64
	var codecFlag string
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "analyze REFERENCE_WAV SECONDARY_WAV",
		Short: "Measure the delay between two extracted audio tracks",
		Long: `Analyze correlates chunks of the secondary track against the reference
and reduces the measurements to a single delay. Positive delays mean the
secondary source plays later than the reference.

Both inputs are PCM WAV files, typically extracted from their containers
at a common sample rate. Pass the video framerate with --fps to enable
PAL drift detection, and the secondary audio codec with --codec to pick
the matching drift thresholds.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			strategy := strings.TrimSpace(strategyFlag)
			if strategy == "" {
				strategy = cfg.Analysis.Strategy
			}
			kind, err := correlate.ParseKind(strategy)
			if err != nil {
				return err
			}

			ref, err := wavfile.Read(args[0])
			if err != nil {
				return fmt.Errorf("read reference: %w", err)
			}
			sec, err := wavfile.Read(args[1])
			if err != nil {
				return fmt.Errorf("read secondary: %w", err)
			}
			if ref.SampleRate != sec.SampleRate {
				return fmt.Errorf("sample rate mismatch: reference %d Hz, secondary %d Hz", ref.SampleRate, sec.SampleRate)
			}

			plan := correlate.PositionPlan{
				Count:    cfg.Analysis.ChunkCount,
				Duration: cfg.Analysis.ChunkDuration,
				StartPct: cfg.Analysis.ScanStartPct,
				EndPct:   cfg.Analysis.ScanEndPct,
			}
			if chunksFlag > 0 {
				plan.Count = chunksFlag
			}
			if durationFlag > 0 {
				plan.Duration = durationFlag
			}
			duration := ref.Duration()
			if sec.Duration() < duration {
				duration = sec.Duration()
			}
			positions := plan.Positions(duration)
			if len(positions) == 0 {
				return fmt.Errorf("streams too short: %.1fs of audio cannot fit %d chunks of %.1fs", duration, plan.Count, plan.Duration)
			}

			filter, err := audio.NewFilterSpec(cfg.Analysis.FilterMethod, cfg.Analysis.FilterLowCut, cfg.Analysis.FilterHighCut, cfg.Analysis.FilterOrder)
			if err != nil {
				return err
			}

			logger.Info("starting analysis",
				logging.Args(
					logging.String(logging.FieldStrategy, string(kind)),
					logging.Int("chunks", len(positions)),
					logging.Float64("chunk_duration", plan.Duration),
					logging.Int("sample_rate", ref.SampleRate),
				)...)

			results, err := correlate.CorrelateChunks(cmd.Context(), ref, sec, positions, correlate.Config{
				Kind:          kind,
				ChunkDuration: plan.Duration,
				MinMatchPct:   cfg.Analysis.MinMatchPct,
				UsePeakFit:    cfg.Analysis.UsePeakFit,
				Workers:       cfg.Analysis.Workers,
				Filter:        filter,
				Logger:        logger,
			})
			if err != nil {
				return err
			}

			method, err := delay.ParseMethod(cfg.Selection.Method)
			if err != nil {
				return err
			}
			selection, selErr := delay.Select(results, method, delay.SelectorConfig{
				MinAcceptedChunks: cfg.Selection.MinAcceptedChunks,
				StableRunLength:   cfg.Selection.StableRunLength,
				ToleranceMs:       cfg.Selection.ToleranceMs,
			})

			preset, err := drift.ParsePreset(cfg.Drift.Quality)
			if err != nil {
				return err
			}
			diagnosis := drift.Diagnose(results, fpsFlag, codecFlag, drift.Options{
				Preset:            preset,
				EpsilonMs:         cfg.Drift.EpsilonMs,
				MinClusterSamples: cfg.Drift.MinClusterSamples,
				MinAcceptedChunks: cfg.Drift.MinAcceptedChunks,
			})

			var runID string
			if selErr == nil && cfg.History.Enabled && !noHistory {
				runID, err = recordAnalysis(cmd, ctx, args[0], args[1], string(kind), ref.SampleRate, results, selection, diagnosis)
				if err != nil {
					return err
				}
			}

			if ctx.jsonOutput() {
				if err := writeAnalysisJSON(cmd, results, selection, selErr, diagnosis, runID); err != nil {
					return err
				}
			} else {
				printAnalysis(cmd, results, selection, selErr, diagnosis, runID)
			}
			return selErr
		},
	}

	cmd.Flags().StringVar(&strategyFlag, "strategy", "", "Correlation strategy (overrides configuration)")
	cmd.Flags().IntVar(&chunksFlag, "chunks", 0, "Number of chunks to correlate (overrides configuration)")
	cmd.Flags().Float64Var(&durationFlag, "chunk-duration", 0, "Chunk length in seconds (overrides configuration)")
	cmd.Flags().Float64Var(&fpsFlag, "fps", 0, "Video framerate for PAL drift detection (0 disables)")
	cmd.Flags().StringVar(&codecFlag, "codec", "", "Secondary audio codec, tightens drift thresholds for lossless sources")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording the run in the history store")
	return cmd
}

func recordAnalysis(cmd *cobra.Command, ctx *commandContext, refPath, secPath, strategy string, sampleRate int, results []correlate.ChunkResult, selection delay.Selection, diagnosis drift.Diagnosis) (string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return "", fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	chunks := make([]history.Chunk, 0, len(results))
	for _, c := range results {
		chunks = append(chunks, history.Chunk{
			Index:          c.Index,
			StartTime:      c.StartTime,
			DelayMsRaw:     c.Result.DelayMsRaw,
			DelayMsRounded: c.Result.DelayMsRounded,
			MatchPct:       c.Result.MatchPct,
			Accepted:       c.Accepted,
		})
	}
	run, err := store.RecordRun(cmd.Context(), history.Run{
		ReferencePath:    refPath,
		SecondaryPath:    secPath,
		Strategy:         strategy,
		SampleRate:       sampleRate,
		ChunkCount:       len(results),
		AcceptedChunks:   countAccepted(results),
		DelayMs:          selection.DelayMsRounded,
		DelayRaw:         selection.DelayMsRaw,
		SelectionMethod:  string(selection.Method),
		SelectionDetails: selection.Details,
		Verdict:          string(diagnosis.Verdict),
		DriftSlopeMsPerS: diagnosis.SlopeMsPerS,
		DriftRSquared:    diagnosis.RSquared,
		DriftDescription: diagnosis.Description,
		Chunks:           chunks,
	})
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return run.ID, nil
}

func printAnalysis(cmd *cobra.Command, results []correlate.ChunkResult, selection delay.Selection, selErr error, diagnosis drift.Diagnosis, runID string) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	rows := buildChunkRows(results)
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Start", "Delay (ms)", "Match %", "Status"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintln(out)

	if selErr != nil {
		fmt.Fprintln(out, renderStatusLine("Delay", statusError, selErr.Error(), colorize))
		return
	}
	delayMsg := fmt.Sprintf("%s (%s, %s)", delay.FormatDelay(selection.DelayMsRounded), selection.Method, selection.Details)
	fmt.Fprintln(out, renderStatusLine("Delay", statusOK, delayMsg, colorize))
	fmt.Fprintln(out, renderStatusLine("Chunks", statusInfo, formatChunkCount(countAccepted(results), len(results)), colorize))
	fmt.Fprintln(out, renderStatusLine("Drift", verdictKind(diagnosis.Verdict), diagnosis.Description, colorize))
	if runID != "" {
		fmt.Fprintln(out, renderStatusLine("Run", statusInfo, shortID(runID), colorize))
	}
}

func writeAnalysisJSON(cmd *cobra.Command, results []correlate.ChunkResult, selection delay.Selection, selErr error, diagnosis drift.Diagnosis, runID string) error {
	type jsonChunk struct {
		Index      int     `json:"index"`
		StartTime  float64 `json:"start_time"`
		DelayMsRaw float64 `json:"delay_ms_raw"`
		DelayMs    int64   `json:"delay_ms"`
		MatchPct   float64 `json:"match_pct"`
		Accepted   bool    `json:"accepted"`
		Reason     string  `json:"reason,omitempty"`
	}
	chunks := make([]jsonChunk, 0, len(results))
	for _, c := range results {
		chunks = append(chunks, jsonChunk{
			Index:      c.Index,
			StartTime:  c.StartTime,
			DelayMsRaw: c.Result.DelayMsRaw,
			DelayMs:    c.Result.DelayMsRounded,
			MatchPct:   c.Result.MatchPct,
			Accepted:   c.Accepted,
			Reason:     c.RejectReason,
		})
	}
	payload := map[string]any{
		"chunks": chunks,
		"drift": map[string]any{
			"verdict":     string(diagnosis.Verdict),
			"slope_ms_s":  diagnosis.SlopeMsPerS,
			"r_squared":   diagnosis.RSquared,
			"clusters":    diagnosis.ClusterCount,
			"description": diagnosis.Description,
		},
	}
	if selErr != nil {
		payload["error"] = selErr.Error()
	} else {
		payload["delay_ms"] = selection.DelayMsRounded
		payload["delay_ms_raw"] = selection.DelayMsRaw
		payload["method"] = string(selection.Method)
		payload["details"] = selection.Details
	}
	if runID != "" {
		payload["run_id"] = runID
	}
	return writeJSON(cmd, payload)
}
