// Package epub folds per-chapter overlay pairs into an EPUB 3 publication
// with media overlays: package document, navigation, audio, and the zip
// container itself.
package epub

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/taleweaver/taleweaver/media"
	"github.com/taleweaver/taleweaver/overlay"
)

// durationEpsilon absorbs float accumulation when comparing clip times.
const durationEpsilon = 1e-6

// Publication is the assembled book: every chapter's overlay pair plus the
// global metadata. Immutable once assembled.
type Publication struct {
	ID            string
	Title         string
	Author        string
	TotalDuration float64
	Pairs         []*overlay.Pair // spine order
	Chapters      []media.Chapter // same order as Pairs
}

// Assemble builds the publication and re-verifies the cross-file invariants
// the synchronizer establishes per chapter: unique anchor ids within each
// document, a gapless ordinal spine, and full-duration timing coverage.
// Violations mean a construction bug, so they are errors, not warnings.
func Assemble(meta *media.Metadata, chapters []media.Chapter, pairs map[string]*overlay.Pair) (*Publication, error) {
	ordered := make([]media.Chapter, len(chapters))
	copy(ordered, chapters)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	pub := &Publication{
		ID:     uuid.New().String(),
		Title:  meta.Title,
		Author: meta.Author,
	}

	for i, ch := range ordered {
		if ch.Index != i+1 {
			return nil, fmt.Errorf("spine gap: chapter index %d at position %d", ch.Index, i+1)
		}
		pair, ok := pairs[ch.ID]
		if !ok {
			return nil, fmt.Errorf("chapter %d (%s) has no overlay pair", ch.Index, ch.Title)
		}
		if err := verifyPair(ch, pair); err != nil {
			return nil, fmt.Errorf("chapter %d: %w", ch.Index, err)
		}
		pub.Chapters = append(pub.Chapters, ch)
		pub.Pairs = append(pub.Pairs, pair)
		pub.TotalDuration += clipMax(pair)
	}
	return pub, nil
}

func verifyPair(ch media.Chapter, pair *overlay.Pair) error {
	if pair.ChapterIndex != ch.Index {
		return fmt.Errorf("overlay pair belongs to chapter %d", pair.ChapterIndex)
	}
	seen := make(map[string]bool, len(pair.Anchors))
	prevStart := math.Inf(-1)
	prevEnd := 0.0
	for _, a := range pair.Anchors {
		if seen[a.ID] {
			return fmt.Errorf("duplicate anchor id %q", a.ID)
		}
		seen[a.ID] = true
		if a.End < a.Start {
			return fmt.Errorf("anchor %q has end before start", a.ID)
		}
		if a.Class == "title" {
			// Structural scaffolding: its nominal clip may overlay the first
			// transcript clip, so it stays out of the ordering accounting.
			continue
		}
		if a.Start < prevStart {
			return fmt.Errorf("anchor %q breaks start ordering", a.ID)
		}
		if a.Start < prevEnd-durationEpsilon {
			return fmt.Errorf("anchor %q overlaps previous clip", a.ID)
		}
		prevStart, prevEnd = a.Start, a.End
	}
	if math.Abs(clipMax(pair)-ch.Duration) > durationEpsilon {
		return fmt.Errorf("timing ends at %.3f, chapter duration is %.3f", clipMax(pair), ch.Duration)
	}
	return nil
}

func clipMax(pair *overlay.Pair) float64 {
	max := 0.0
	for _, a := range pair.Anchors {
		if a.End > max {
			max = a.End
		}
	}
	return max
}
