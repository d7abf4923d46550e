// Package media locates chapter boundaries in an audiobook container and
// demuxes each chapter into its own audio file with ffmpeg.
package media

import (
	"fmt"
	"os/exec"
	"strings"
)

// Chapter is one chapter of the source audiobook, demuxed to its own audio
// file. Offsets are seconds in the original recording; Duration is the length
// of the extracted file. Records are immutable once produced.
type Chapter struct {
	ID        string  `json:"id"`
	Index     int     `json:"index"` // 1-based
	Title     string  `json:"title"`
	Filename  string  `json:"filename"`
	Path      string  `json:"path"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Duration  float64 `json:"duration"`
}

// Metadata is the audiobook-level information read from the container.
type Metadata struct {
	Title    string
	Author   string
	Duration float64
}

// CheckTools verifies ffmpeg and ffprobe are on PATH.
func CheckTools() error {
	var missing []string
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required tools not found: %s (install ffmpeg)", strings.Join(missing, ", "))
	}
	return nil
}

// sanitizeFilename makes a chapter title safe for file names and EPUB hrefs.
func sanitizeFilename(name string) string {
	const forbidden = `<>:"/\|?* `
	out := strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbidden, r) {
			return '_'
		}
		return r
	}, name)
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	out = strings.Trim(out, "._")
	if len(out) > 200 {
		out = out[:200]
	}
	return out
}
