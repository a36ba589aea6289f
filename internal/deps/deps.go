// Package deps reports the availability of the external tools the
// analysis pipeline shells out to. Probing and extraction call ffprobe
// and ffmpeg; executing a rendered merge plan needs mkvmerge, though
// plans render fine without it.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external binary lockstep relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Analysis returns the external tools an analysis pipeline calls, in
// the order they come into play.
func Analysis(ffprobe, ffmpeg, mkvmerge string) []Requirement {
	return []Requirement{
		{Name: "ffprobe", Command: ffprobe, Description: "Container probing and stream metadata"},
		{Name: "FFmpeg", Command: ffmpeg, Description: "Audio track extraction"},
		{Name: "mkvmerge", Command: mkvmerge, Description: "Merge plan execution", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// AllRequiredAvailable reports whether every non-optional dependency
// resolved.
func AllRequiredAvailable(statuses []Status) bool {
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			return false
		}
	}
	return true
}
