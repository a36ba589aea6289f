package extract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Options control a single track extraction.
type Options struct {
	// Binary is the ffmpeg executable; empty means "ffmpeg".
	Binary string
	// Input is the container to read.
	Input string
	// StreamIndex is the absolute stream index within the container,
	// as reported by ffprobe.
	StreamIndex int
	// SampleRate resamples the output to the given rate in Hz; zero
	// keeps the source rate.
	SampleRate int
	// Output is the WAV path to write. Existing files are replaced.
	Output string
}

// WAV extracts one audio stream as mono 16-bit PCM WAV.
func WAV(ctx context.Context, opts Options) error {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	input := strings.TrimSpace(opts.Input)
	if input == "" {
		return errors.New("ffmpeg extract: empty input path")
	}
	output := strings.TrimSpace(opts.Output)
	if output == "" {
		return errors.New("ffmpeg extract: empty output path")
	}
	if opts.StreamIndex < 0 {
		return fmt.Errorf("ffmpeg extract: invalid stream index %d", opts.StreamIndex)
	}

	args := []string{
		"-y", "-v", "error", "-nostdin",
		"-i", input,
		"-map", "0:" + strconv.Itoa(opts.StreamIndex),
		"-ac", "1",
	}
	if opts.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(opts.SampleRate))
	}
	args = append(args, "-acodec", "pcm_s16le", "-f", "wav", output)

	cmd := exec.CommandContext(ctx, binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
