package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"lockstep/internal/correlate"
	"lockstep/internal/delay"
	"lockstep/internal/history"
	"lockstep/internal/language"
	"lockstep/internal/media/ffprobe"
	"lockstep/internal/mergeplan"
)

func buildChunkRows(chunks []correlate.ChunkResult) [][]string {
	rows := make([][]string, 0, len(chunks))
	for _, c := range chunks {
		delayCol := "-"
		matchCol := "-"
		status := "ok"
		if c.Accepted {
			delayCol = fmt.Sprintf("%.2f", c.Result.DelayMsRaw)
			matchCol = fmt.Sprintf("%.1f", c.Result.MatchPct)
		} else {
			status = c.RejectReason
			if c.Result.MatchPct > 0 {
				delayCol = fmt.Sprintf("%.2f", c.Result.DelayMsRaw)
				matchCol = fmt.Sprintf("%.1f", c.Result.MatchPct)
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.Index),
			formatChunkTime(c.StartTime),
			delayCol,
			matchCol,
			status,
		})
	}
	return rows
}

// formatChunkTime renders a chunk start as m:ss into the stream.
func formatChunkTime(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func formatChunkCount(accepted, total int) string {
	return fmt.Sprintf("%d/%d", accepted, total)
}

func countAccepted(chunks []correlate.ChunkResult) int {
	n := 0
	for _, c := range chunks {
		if c.Accepted {
			n++
		}
	}
	return n
}

// streamLanguage resolves a stream's language tag to a normalized code,
// empty when the container carries none.
func streamLanguage(s ffprobe.Stream) string {
	return language.ExtractFromTags(s.Tags)
}

func buildStreamRows(res ffprobe.Result) [][]string {
	delays := res.ContainerDelays()
	rows := make([][]string, 0, len(res.Streams))
	for _, s := range res.Streams {
		lang := streamLanguage(s)
		langCol := "-"
		if lang != "" {
			langCol = fmt.Sprintf("%s (%s)", lang, language.DisplayName(lang))
		}
		title := strings.TrimSpace(s.Tags["title"])
		if title == "" {
			title = "-"
		}
		delayCol := "-"
		if ms, ok := delays[s.Index]; ok {
			delayCol = delay.FormatDelay(ms)
		}
		detail := "-"
		switch s.CodecType {
		case "video":
			if s.Width > 0 && s.Height > 0 {
				detail = fmt.Sprintf("%dx%d", s.Width, s.Height)
			}
		case "audio":
			if s.ChannelLayout != "" {
				detail = s.ChannelLayout
			} else if s.Channels > 0 {
				detail = fmt.Sprintf("%dch", s.Channels)
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Index),
			s.CodecType,
			s.CodecName,
			detail,
			langCol,
			title,
			yesNo(s.Disposition.Default == 1),
			yesNo(s.Disposition.Forced == 1),
			delayCol,
		})
	}
	return rows
}

func buildRunRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			formatDisplayTime(run.CreatedAt),
			filepath.Base(run.ReferencePath),
			filepath.Base(run.SecondaryPath),
			run.Strategy,
			delay.FormatDelay(run.DelayMs),
			run.Verdict,
			formatChunkCount(run.AcceptedChunks, run.ChunkCount),
		})
	}
	return rows
}

func buildHistoryChunkRows(chunks []history.Chunk) [][]string {
	rows := make([][]string, 0, len(chunks))
	for _, c := range chunks {
		status := "ok"
		if !c.Accepted {
			status = "rejected"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.Index),
			formatChunkTime(c.StartTime),
			fmt.Sprintf("%.2f", c.DelayMsRaw),
			fmt.Sprintf("%.1f", c.MatchPct),
			status,
		})
	}
	return rows
}

func buildPlanRows(plan *mergeplan.Plan) [][]string {
	rows := make([][]string, 0, len(plan.Items))
	for i, item := range plan.Items {
		langCol := item.Language
		if langCol == "" {
			langCol = "-"
		}
		name := item.Name
		if name == "" {
			name = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			item.Source,
			fmt.Sprintf("%d", item.TrackID),
			string(item.Type),
			item.Codec,
			langCol,
			name,
			yesNo(item.Default),
			yesNo(item.Forced),
			delay.FormatDelay(item.DelayMs),
			filepath.Base(item.Path),
		})
	}
	return rows
}

func shortID(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 8 {
		return value[:8]
	}
	return value
}

func formatDisplayTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format("2006-01-02 15:04")
}
