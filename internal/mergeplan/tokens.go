package mergeplan

import (
	"fmt"
	"strings"

	"lockstep/internal/delay"
)

// RenderOptions controls mkvmerge token rendering.
type RenderOptions struct {
	// DisableTrackStatisticsTags omits mkvmerge's statistics tags.
	DisableTrackStatisticsTags bool
	// DisableHeaderCompression forces --compression none on every
	// track.
	DisableHeaderCompression bool
	// RemoveDialogNormalization strips dialnorm gain from AC3-family
	// audio tracks.
	RemoveDialogNormalization bool
}

// Tokens renders the complete mkvmerge argument vector for a plan.
func Tokens(plan *Plan, outputPath string, opts RenderOptions) []string {
	tokens := []string{"-o", outputPath}

	if opts.DisableTrackStatisticsTags {
		tokens = append(tokens, "--disable-track-statistics-tags")
	}
	if plan.Chapters != "" {
		tokens = append(tokens, "--chapters", plan.Chapters)
	}
	for _, item := range plan.Items {
		tokens = append(tokens, trackTokens(item, opts)...)
	}
	for _, attachment := range plan.Attachments {
		tokens = append(tokens, "--attach-file", attachment)
	}
	if len(plan.Items) > 0 {
		order := make([]string, len(plan.Items))
		for i := range order {
			order[i] = fmt.Sprintf("%d:0", i)
		}
		tokens = append(tokens, "--track-order", strings.Join(order, ","))
	}
	return tokens
}

// trackTokens renders one plan item. Each item becomes its own input
// file for mkvmerge, so in-file track ids are always 0.
func trackTokens(item Item, opts RenderOptions) []string {
	const trackID = "0"

	var tokens []string
	if item.Language != "" && item.Language != "und" {
		tokens = append(tokens, "--language", trackID+":"+item.Language)
	}
	if item.Name != "" {
		tokens = append(tokens, "--track-name", trackID+":"+item.Name)
	}
	if item.DelayMs != 0 {
		tokens = append(tokens, "--sync", fmt.Sprintf("%s:%+d", trackID, item.DelayMs))
	}
	tokens = append(tokens, "--default-track-flag", trackID+":"+yesNo(item.Default))
	if item.Forced && item.Type == delay.TrackSubtitles {
		tokens = append(tokens, "--forced-display-flag", trackID+":yes")
	}
	if opts.DisableHeaderCompression {
		tokens = append(tokens, "--compression", trackID+":none")
	}
	if opts.RemoveDialogNormalization && item.Type == delay.TrackAudio &&
		strings.Contains(strings.ToLower(item.Codec), "ac3") {
		tokens = append(tokens, "--remove-dialog-normalization-gain", trackID)
	}
	tokens = append(tokens, "(", item.Path, ")")
	return tokens
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// FormatTokens renders a token vector for display, one option per line
// with shell-style continuations and input groups on their own lines.
func FormatTokens(tokens []string) string {
	var lines []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok != "(" && tok != ")" && strings.HasPrefix(tok, "-") &&
			i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && tokens[i+1] != "(" {
			lines = append(lines, tok+" "+tokens[i+1])
			i++
			continue
		}
		lines = append(lines, tok)
	}
	return strings.Join(lines, " \\\n")
}
