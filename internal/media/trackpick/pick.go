package trackpick

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"lockstep/internal/language"
	"lockstep/internal/media/ffprobe"
)

// Choice identifies the audio stream to extract for correlation.
type Choice struct {
	Stream ffprobe.Stream
	// Summary is a short human-readable description of the pick,
	// suitable for a status line.
	Summary string
}

type candidate struct {
	stream    ffprobe.Stream
	order     int
	langCode  string
	title     string
	langMatch bool
	lossless  bool
	channels  int
	flagged   bool
	comment   bool
}

// Pick selects the audio stream best suited for correlation.
// preferredLang may be any identifier language.Normalize accepts;
// empty means no language preference. The second return value is
// false when the probe carries no audio streams.
func Pick(result *ffprobe.Result, preferredLang string) (Choice, bool) {
	candidates := buildCandidates(result, preferredLang)
	if len(candidates) == 0 {
		return Choice{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return score(candidates[i]) > score(candidates[j])
	})

	best := candidates[0]
	return Choice{Stream: best.stream, Summary: summarize(best)}, true
}

// Describe returns the status-line summary for a stream, matching the
// wording Pick produces for its choice.
func Describe(stream ffprobe.Stream) string {
	title := strings.TrimSpace(stream.Tags["title"])
	return summarize(candidate{
		stream:   stream,
		langCode: language.Normalize(language.ExtractFromTags(stream.Tags)),
		title:    title,
		lossless: losslessCodec(stream.CodecName),
		channels: channelCount(stream),
	})
}

func buildCandidates(result *ffprobe.Result, preferredLang string) []candidate {
	if result == nil {
		return nil
	}
	want := ""
	if strings.TrimSpace(preferredLang) != "" {
		want = language.Normalize(preferredLang)
	}
	var out []candidate
	order := 0
	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		code := language.Normalize(language.ExtractFromTags(stream.Tags))
		title := strings.TrimSpace(stream.Tags["title"])
		out = append(out, candidate{
			stream:    stream,
			order:     order,
			langCode:  code,
			title:     title,
			langMatch: want != "" && code == want,
			lossless:  losslessCodec(stream.CodecName),
			channels:  channelCount(stream),
			flagged:   stream.Disposition.Default == 1,
			comment:   commentaryTitle(title),
		})
		order++
	}
	return out
}

// score ranks candidates. Language dominates, then channel count
// separates main mixes from stereo commentaries, then lossless and
// the container default flag break ties. Earlier streams win exact
// ties so the pick is deterministic.
func score(cand candidate) float64 {
	total := 0.0
	if cand.langMatch {
		total += 1000
	}
	switch {
	case cand.channels >= 6:
		total += 300
	case cand.channels >= 4:
		total += 200
	case cand.channels >= 2:
		total += 100
	default:
		total += 50
	}
	if cand.lossless {
		total += 150
	}
	if cand.flagged {
		total += 25
	}
	if cand.comment {
		total -= 2000
	}
	return total - float64(cand.order)*0.1
}

// losslessCodec reports codecs whose decode is bit-exact. ffprobe
// reports DTS-HD MA as plain "dts", so DTS family tracks stay lossy
// here; the delay math does not care, only the summary does.
func losslessCodec(codecName string) bool {
	name := strings.ToLower(strings.TrimSpace(codecName))
	switch name {
	case "truehd", "flac", "mlp", "alac":
		return true
	}
	return strings.HasPrefix(name, "pcm_")
}

func channelCount(stream ffprobe.Stream) int {
	if stream.Channels > 0 {
		return stream.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(stream.ChannelLayout))
	if layout == "" {
		return 0
	}
	switch {
	case strings.HasPrefix(layout, "7.1"):
		return 8
	case strings.HasPrefix(layout, "6.1"):
		return 7
	case strings.HasPrefix(layout, "5.1"):
		return 6
	case strings.HasPrefix(layout, "quad"), strings.HasPrefix(layout, "4."):
		return 4
	case strings.HasPrefix(layout, "stereo"), strings.HasPrefix(layout, "2."):
		return 2
	case strings.HasPrefix(layout, "mono"), layout == "1.0":
		return 1
	}
	if idx := strings.IndexAny(layout, ".("); idx > 0 {
		if n, err := strconv.Atoi(layout[:idx]); err == nil {
			return n
		}
	}
	return 0
}

func commentaryTitle(title string) bool {
	lowered := strings.ToLower(title)
	for _, marker := range []string{"commentary", "comment track", "isolated score", "descriptive"} {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func summarize(cand candidate) string {
	parts := []string{}
	if cand.langCode != "" && cand.langCode != "und" {
		parts = append(parts, cand.langCode)
	}
	if codec := strings.TrimSpace(cand.stream.CodecName); codec != "" {
		parts = append(parts, codec)
	}
	if cand.channels > 0 {
		parts = append(parts, fmt.Sprintf("%dch", cand.channels))
	}
	if cand.lossless {
		parts = append(parts, "lossless")
	}
	if cand.title != "" {
		parts = append(parts, cand.title)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("stream %d", cand.stream.Index)
	}
	return strings.Join(parts, " | ")
}
