package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lockstep/internal/delay"
	"lockstep/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, ctx, 0)
		},
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, ctx, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func runHistoryList(cmd *cobra.Command, ctx *commandContext, limit int) error {
	return withHistoryStore(ctx, func(store *history.Store) error {
		runs, err := store.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if ctx.jsonOutput() {
			return writeRunListJSON(cmd, runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "When", "Reference", "Secondary", "Strategy", "Delay", "Verdict", "Chunks"},
			buildRunRows(runs),
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
		))
		return nil
	})
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show one run with its chunk series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(ctx, func(store *history.Store) error {
				run, err := store.FindRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %q not found", args[0])
				}
				if ctx.jsonOutput() {
					return writeRunJSON(cmd, run)
				}
				printRun(cmd, run)
				return nil
			})
		},
	}
	return cmd
}

func withHistoryStore(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func printRun(cmd *cobra.Command, run *history.Run) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, run.ID, colorize))
	fmt.Fprintln(out, renderStatusLine("When", statusInfo, formatDisplayTime(run.CreatedAt), colorize))
	fmt.Fprintln(out, renderStatusLine("Reference", statusInfo, run.ReferencePath, colorize))
	fmt.Fprintln(out, renderStatusLine("Secondary", statusInfo, run.SecondaryPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Strategy", statusInfo, run.Strategy, colorize))
	delayMsg := fmt.Sprintf("%s (%s, %s)", delay.FormatDelay(run.DelayMs), run.SelectionMethod, run.SelectionDetails)
	fmt.Fprintln(out, renderStatusLine("Delay", statusOK, delayMsg, colorize))
	fmt.Fprintln(out, renderStatusLine("Drift", statusInfo, run.DriftDescription, colorize))

	if len(run.Chunks) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(
			[]string{"#", "Start", "Delay (ms)", "Match %", "Status"},
			buildHistoryChunkRows(run.Chunks),
			[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
		))
	}
}

func writeRunListJSON(cmd *cobra.Command, runs []history.Run) error {
	items := make([]map[string]any, 0, len(runs))
	for _, run := range runs {
		items = append(items, runJSONFields(&run, false))
	}
	return writeJSON(cmd, map[string]any{"runs": items})
}

func writeRunJSON(cmd *cobra.Command, run *history.Run) error {
	return writeJSON(cmd, runJSONFields(run, true))
}

func runJSONFields(run *history.Run, includeChunks bool) map[string]any {
	fields := map[string]any{
		"id":           run.ID,
		"created_at":   run.CreatedAt,
		"reference":    run.ReferencePath,
		"secondary":    run.SecondaryPath,
		"strategy":     run.Strategy,
		"sample_rate":  run.SampleRate,
		"chunk_count":  run.ChunkCount,
		"accepted":     run.AcceptedChunks,
		"delay_ms":     run.DelayMs,
		"delay_ms_raw": run.DelayRaw,
		"method":       run.SelectionMethod,
		"details":      run.SelectionDetails,
		"verdict":      run.Verdict,
	}
	if includeChunks {
		type jsonChunk struct {
			Index      int     `json:"index"`
			StartTime  float64 `json:"start_time"`
			DelayMsRaw float64 `json:"delay_ms_raw"`
			DelayMs    int64   `json:"delay_ms"`
			MatchPct   float64 `json:"match_pct"`
			Accepted   bool    `json:"accepted"`
		}
		chunks := make([]jsonChunk, 0, len(run.Chunks))
		for _, c := range run.Chunks {
			chunks = append(chunks, jsonChunk{
				Index:      c.Index,
				StartTime:  c.StartTime,
				DelayMsRaw: c.DelayMsRaw,
				DelayMs:    c.DelayMsRounded,
				MatchPct:   c.MatchPct,
				Accepted:   c.Accepted,
			})
		}
		fields["chunks"] = chunks
	}
	return fields
}
