package overlay

import (
	"strings"

	"github.com/taleweaver/taleweaver/transcribe"
)

// paragraphMinSegments is how many segments a paragraph must hold before a
// sentence-terminal segment may close it.
const paragraphMinSegments = 3

// Paragraphs groups consecutive segments into paragraph-sized blocks for the
// text document. A paragraph closes once it holds at least three segments and
// the latest one ends in terminal punctuation, unless that segment is the last
// of the chapter. The trailing paragraph always flushes. Purely a readability
// heuristic; timing is untouched.
func Paragraphs(segs []transcribe.Segment) [][]transcribe.Segment {
	var out [][]transcribe.Segment
	var current []transcribe.Segment

	for i, seg := range segs {
		current = append(current, seg)
		last := i == len(segs)-1
		if len(current) >= paragraphMinSegments && endsSentence(seg.Text) && !last {
			out = append(out, current)
			current = nil
		}
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

func endsSentence(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasSuffix(t, ".") || strings.HasSuffix(t, "!") || strings.HasSuffix(t, "?")
}
