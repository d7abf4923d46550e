package transcribe

import (
	"fmt"
	"sort"
	"strings"
)

// Normalize converts a backend's native output into an ordered, non-overlapping
// segment sequence at the requested granularity.
//
// Word granularity needs sentences with sub-word tokens; sentence-only timing
// yields ErrWordTimingUnavailable so the caller can degrade instead of being
// handed fabricated offsets. Output lacking any timing becomes a single
// whole-chapter sentence segment spanning chapterDur.
func Normalize(raw *RawResult, granularity Granularity, chapterDur float64) ([]Segment, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil result", ErrMalformedOutput)
	}

	if len(raw.Sentences) == 0 {
		text := strings.TrimSpace(raw.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: no sentences and no text", ErrMalformedOutput)
		}
		// Timing-free output: approximate with one span covering the chapter.
		return []Segment{{Text: text, Start: 0, End: chapterDur, Kind: KindSentence}}, nil
	}

	var segs []Segment
	switch granularity {
	case GranularityWord:
		if !hasTokens(raw.Sentences) {
			return nil, ErrWordTimingUnavailable
		}
		for _, s := range raw.Sentences {
			if len(s.Tokens) == 0 {
				// A token-less sentence keeps its own timing at sentence
				// kind rather than losing its text.
				text := strings.TrimSpace(s.Text)
				if text == "" {
					continue
				}
				segs = append(segs, Segment{Text: text, Start: s.Start, End: s.End, Kind: KindSentence})
				continue
			}
			segs = append(segs, mergeTokens(s)...)
		}
	case GranularitySentence:
		for _, s := range raw.Sentences {
			text := strings.TrimSpace(s.Text)
			if text == "" {
				continue
			}
			segs = append(segs, Segment{Text: text, Start: s.Start, End: s.End, Kind: KindSentence})
		}
	default:
		return nil, fmt.Errorf("unknown granularity %q", granularity)
	}

	sanitize(segs)
	return segs, nil
}

func hasTokens(sentences []RawSentence) bool {
	for _, s := range sentences {
		if len(s.Tokens) > 0 {
			return true
		}
	}
	return false
}

// sanitize enforces the chapter timing invariant in place: segments sorted by
// start, end >= start, no overlap with the previous segment.
func sanitize(segs []Segment) {
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
	prevEnd := 0.0
	for i := range segs {
		if segs[i].Start < prevEnd {
			segs[i].Start = prevEnd
		}
		if segs[i].End < segs[i].Start {
			segs[i].End = segs[i].Start
		}
		prevEnd = segs[i].End
	}
}
