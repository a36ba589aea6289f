package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lockstep/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe FILE",
		Short: "Show container streams, languages, and start offsets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			res, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), args[0])
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeProbeJSON(cmd, res)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Type", "Codec", "Detail", "Language", "Title", "Default", "Forced", "Delay"},
				buildStreamRows(res),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, fmt.Sprintf("%.1fs", res.DurationSeconds()), colorize))
			if fps := res.FrameRate(); fps > 0 {
				fmt.Fprintln(out, renderStatusLine("Framerate", statusInfo, fmt.Sprintf("%.3f fps", fps), colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Streams", statusInfo, fmt.Sprintf("%d video, %d audio, %d subtitles",
				res.VideoStreamCount(), res.AudioStreamCount(), res.SubtitleStreamCount()), colorize))
			return nil
		},
	}
	return cmd
}

func writeProbeJSON(cmd *cobra.Command, res ffprobe.Result) error {
	type jsonStream struct {
		Index    int    `json:"index"`
		Type     string `json:"type"`
		Codec    string `json:"codec"`
		Language string `json:"language,omitempty"`
		Title    string `json:"title,omitempty"`
		Default  bool   `json:"default"`
		Forced   bool   `json:"forced"`
		DelayMs  *int64 `json:"container_delay_ms,omitempty"`
	}
	delays := res.ContainerDelays()
	streams := make([]jsonStream, 0, len(res.Streams))
	for _, s := range res.Streams {
		js := jsonStream{
			Index:   s.Index,
			Type:    s.CodecType,
			Codec:   s.CodecName,
			Title:   s.Tags["title"],
			Default: s.Disposition.Default == 1,
			Forced:  s.Disposition.Forced == 1,
		}
		if lang := streamLanguage(s); lang != "" {
			js.Language = lang
		}
		if ms, ok := delays[s.Index]; ok {
			v := ms
			js.DelayMs = &v
		}
		streams = append(streams, js)
	}
	return writeJSON(cmd, map[string]any{
		"duration_seconds": res.DurationSeconds(),
		"framerate":        res.FrameRate(),
		"streams":          streams,
	})
}
