// Package overlay binds a chapter's transcript to its audio: paragraphs of
// anchored text spans paired with a parallel timing document of clip ranges.
package overlay

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatClip renders seconds as HH:MM:SS.mmm for clip ranges. Rounding to
// milliseconds happens before the fields are split so a value just under a
// minute boundary carries into the next field instead of printing 60 seconds.
func FormatClip(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3600000
	m := (ms % 3600000) / 60000
	rem := ms % 60000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, rem/1000, rem%1000)
}

// ParseClip is the inverse of FormatClip.
func ParseClip(clip string) (float64, error) {
	parts := strings.Split(clip, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid clip time %q", clip)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clip time %q", clip)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clip time %q", clip)
	}
	s, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid clip time %q", clip)
	}
	return float64(h*3600+m*60) + s, nil
}
