package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lockstep/internal/logging"
	"lockstep/internal/media/extract"
	"lockstep/internal/media/ffprobe"
	"lockstep/internal/media/trackpick"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var (
		outputFlag   string
		streamFlag   int
		languageFlag string
		rateFlag     int
	)

	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract an audio track as a mono WAV ready for analysis",
		Long: `Extract one audio stream from a container as mono 16-bit PCM WAV.

The track is chosen automatically: the preferred language wins, then
the main mix beats stereo commentaries, then lossless codecs break
ties. Pass --stream to override the choice with an explicit ffprobe
stream index. The output feeds straight into lockstep analyze.`,
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
			input := args[0]

			probe, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), input)
			if err != nil {
				return err
			}

			stream, summary, err := chooseStream(probe, streamFlag, languageFlag)
			if err != nil {
				return err
			}

			rate := rateFlag
			if rate <= 0 {
				rate = cfg.Analysis.SampleRate
			}
			output := strings.TrimSpace(outputFlag)
			if output == "" {
				output = defaultExtractPath(input, stream.Index)
			}

			logger.Info("extracting audio track",
				logging.Args(
					logging.String(logging.FieldSource, input),
					logging.Int(logging.FieldTrackID, stream.Index),
					logging.Int("sample_rate", rate),
					logging.String("output", output),
				)...)

			err = extract.WAV(cmd.Context(), extract.Options{
				Binary:      cfg.FFmpegBinary(),
				Input:       input,
				StreamIndex: stream.Index,
				SampleRate:  rate,
				Output:      output,
			})
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"input":       input,
					"stream":      stream.Index,
					"track":       summary,
					"sample_rate": rate,
					"output":      output,
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Track", statusOK, fmt.Sprintf("stream %d: %s", stream.Index, summary), colorize))
			fmt.Fprintln(out, renderStatusLine("Sample rate", statusInfo, fmt.Sprintf("%d Hz", rate), colorize))
			fmt.Fprintln(out, renderStatusLine("Output", statusOK, output, colorize))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output WAV path (default: alongside the input)")
	cmd.Flags().IntVar(&streamFlag, "stream", -1, "extract this ffprobe stream index instead of auto-picking")
	cmd.Flags().StringVar(&languageFlag, "language", "", "preferred track language for auto-picking")
	cmd.Flags().IntVar(&rateFlag, "rate", 0, "output sample rate in Hz (default: analysis sample rate)")
	return cmd
}

// chooseStream resolves which audio stream to extract, either the
// explicit index or the ranked pick.
func chooseStream(probe ffprobe.Result, streamIndex int, preferredLang string) (ffprobe.Stream, string, error) {
	if streamIndex >= 0 {
		for _, stream := range probe.Streams {
			if stream.Index != streamIndex {
				continue
			}
			if !strings.EqualFold(stream.CodecType, "audio") {
				return ffprobe.Stream{}, "", fmt.Errorf("stream %d is %s, not audio", streamIndex, stream.CodecType)
			}
			return stream, trackpick.Describe(stream), nil
		}
		return ffprobe.Stream{}, "", fmt.Errorf("stream %d not found", streamIndex)
	}

	choice, ok := trackpick.Pick(&probe, preferredLang)
	if !ok {
		return ffprobe.Stream{}, "", fmt.Errorf("no audio streams to extract")
	}
	return choice.Stream, choice.Summary, nil
}

func defaultExtractPath(input string, streamIndex int) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return fmt.Sprintf("%s.track%d.wav", base, streamIndex)
}
