package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lockstep/internal/delay"
	"lockstep/internal/logging"
	"lockstep/internal/media/ffprobe"
	"lockstep/internal/mergeplan"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var sourceFlags []string
	var delayFlags []string
	var subtitleDelayFlags []string
	var extractedFlags []string
	var referenceFlag string
	var outputFlag string
	var remuxFlag bool
	var skipProbe bool
	var keepStatistics bool
	var keepCompression bool
	var keepDialnorm bool

	cmd := &cobra.Command{
		Use:   "plan LAYOUT_TOML",
		Short: "Build a merge plan and its mkvmerge invocation from a layout file",
		Long: `Plan resolves a layout's tracks against measured delays and renders the
mkvmerge tokens that produce the synchronized output.

Sources are bound with --source NAME=PATH. Measured delays from analyze
are passed with --delay NAME=MS (raw milliseconds, negative when the
source plays early); the global shift that keeps every delay
non-negative is applied here. Each source container is probed for
per-track container delays unless --skip-probe is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			layout, err := mergeplan.LoadLayout(args[0])
			if err != nil {
				return err
			}

			sources, err := parseStringPairs(sourceFlags, "--source")
			if err != nil {
				return err
			}
			rawDelays, err := parseFloatPairs(delayFlags, "--delay")
			if err != nil {
				return err
			}
			subtitleDelays, err := parseIntPairs(subtitleDelayFlags, "--subtitle-delay")
			if err != nil {
				return err
			}
			extracted, err := parseStringPairs(extractedFlags, "--extracted")
			if err != nil {
				return err
			}

			reference := strings.TrimSpace(referenceFlag)
			if reference == "" {
				reference = defaultReference(layout)
			}

			containerDelays := make(map[string]map[int]int64, len(sources))
			if !skipProbe {
				for name, path := range sources {
					res, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), path)
					if err != nil {
						return fmt.Errorf("probe %s: %w", name, err)
					}
					containerDelays[name] = res.ContainerDelays()
					logger.Debug("probed container",
						logging.Args(
							logging.String(logging.FieldSource, name),
							logging.Int("streams", len(res.Streams)),
						)...)
				}
			}

			plan, err := buildPlan(mergeplan.BuildInput{
				Layout:          layout,
				Sources:         sources,
				Extracted:       extracted,
				Delays:          delay.Finalize(rawDelays, reference),
				SubtitleDelays:  subtitleDelays,
				ContainerDelays: containerDelays,
			}, remuxFlag)
			if err != nil {
				return err
			}

			output := strings.TrimSpace(outputFlag)
			if output == "" {
				output = plan.Output
			}
			if output == "" {
				return fmt.Errorf("layout %s names no output file; pass --output", args[0])
			}

			tokens := mergeplan.Tokens(plan, output, mergeplan.RenderOptions{
				DisableTrackStatisticsTags: !keepStatistics,
				DisableHeaderCompression:   !keepCompression,
				RemoveDialogNormalization:  !keepDialnorm,
			})

			if ctx.jsonOutput() {
				return writePlanJSON(cmd, plan, output, tokens)
			}
			printPlan(cmd, plan, output, tokens)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sourceFlags, "source", nil, "Source container as NAME=PATH (repeatable)")
	cmd.Flags().StringArrayVar(&delayFlags, "delay", nil, "Measured delay as NAME=MS, raw milliseconds (repeatable)")
	cmd.Flags().StringArrayVar(&subtitleDelayFlags, "subtitle-delay", nil, "Subtitle delay override as NAME=MS (repeatable)")
	cmd.Flags().StringArrayVar(&extractedFlags, "extracted", nil, "Extracted track override as SOURCE:TYPE:ID=PATH (repeatable)")
	cmd.Flags().StringVar(&referenceFlag, "reference", "", "Reference source name (defaults to the first video track's source)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (overrides the layout)")
	cmd.Flags().BoolVar(&remuxFlag, "remux", false, "Zero all delays, keeping only track selection and order")
	cmd.Flags().BoolVar(&skipProbe, "skip-probe", false, "Skip probing sources for container delays")
	cmd.Flags().BoolVar(&keepStatistics, "keep-track-statistics", false, "Keep mkvmerge track statistics tags")
	cmd.Flags().BoolVar(&keepCompression, "keep-header-compression", false, "Keep mkvmerge header compression")
	cmd.Flags().BoolVar(&keepDialnorm, "keep-dialnorm", false, "Keep AC-3 dialog normalization gain")
	return cmd
}

func buildPlan(in mergeplan.BuildInput, remux bool) (*mergeplan.Plan, error) {
	if remux {
		return mergeplan.BuildRemux(in)
	}
	return mergeplan.Build(in)
}

// defaultReference picks the source whose video track defines the output
// timeline when the caller names none.
func defaultReference(layout *mergeplan.Layout) string {
	for _, tr := range layout.Tracks {
		if strings.EqualFold(strings.TrimSpace(tr.Type), "video") {
			return tr.Source
		}
	}
	if len(layout.Tracks) > 0 {
		return layout.Tracks[0].Source
	}
	return ""
}

func printPlan(cmd *cobra.Command, plan *mergeplan.Plan, output string, tokens []string) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderTable(
		[]string{"#", "Source", "Track", "Type", "Codec", "Lang", "Name", "Default", "Forced", "Delay", "File"},
		buildPlanRows(plan),
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderStatusLine("Output", statusInfo, output, colorize))
	if plan.Delays.GlobalShiftMs != 0 {
		fmt.Fprintln(out, renderStatusLine("Shift", statusInfo, delay.FormatDelay(plan.Delays.GlobalShiftMs), colorize))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, mergeplan.FormatTokens(tokens))
}

func writePlanJSON(cmd *cobra.Command, plan *mergeplan.Plan, output string, tokens []string) error {
	type jsonItem struct {
		Source   string `json:"source"`
		TrackID  int    `json:"track_id"`
		Type     string `json:"type"`
		Codec    string `json:"codec,omitempty"`
		Language string `json:"language,omitempty"`
		Name     string `json:"name,omitempty"`
		Default  bool   `json:"default"`
		Forced   bool   `json:"forced"`
		DelayMs  int64  `json:"delay_ms"`
		Path     string `json:"path"`
	}
	items := make([]jsonItem, 0, len(plan.Items))
	for _, item := range plan.Items {
		items = append(items, jsonItem{
			Source:   item.Source,
			TrackID:  item.TrackID,
			Type:     string(item.Type),
			Codec:    item.Codec,
			Language: item.Language,
			Name:     item.Name,
			Default:  item.Default,
			Forced:   item.Forced,
			DelayMs:  item.DelayMs,
			Path:     item.Path,
		})
	}
	return writeJSON(cmd, map[string]any{
		"output":          output,
		"global_shift_ms": plan.Delays.GlobalShiftMs,
		"items":           items,
		"tokens":          tokens,
	})
}

func parseStringPairs(values []string, flag string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, value := range values {
		key, val, ok := strings.Cut(value, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.TrimSpace(val) == "" {
			return nil, fmt.Errorf("%s expects NAME=VALUE, got %q", flag, value)
		}
		out[key] = strings.TrimSpace(val)
	}
	return out, nil
}

func parseFloatPairs(values []string, flag string) (map[string]float64, error) {
	pairs, err := parseStringPairs(values, flag)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(pairs))
	for key, val := range pairs {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("%s %s: invalid milliseconds %q", flag, key, val)
		}
		out[key] = f
	}
	return out, nil
}

func parseIntPairs(values []string, flag string) (map[string]int64, error) {
	pairs, err := parseStringPairs(values, flag)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(pairs))
	for key, val := range pairs {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s %s: invalid milliseconds %q", flag, key, val)
		}
		out[key] = n
	}
	return out, nil
}
