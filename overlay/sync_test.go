package overlay

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/taleweaver/taleweaver/media"
	"github.com/taleweaver/taleweaver/transcribe"
)

func testChapter() media.Chapter {
	return media.Chapter{
		ID:       "3",
		Index:    2,
		Title:    "Chapter Two",
		Filename: "002_Chapter_Two.mp3",
		Duration: 120.0,
	}
}

func testTranscript() *transcribe.Transcript {
	return &transcribe.Transcript{
		Segments: []transcribe.Segment{
			{Text: "It was late.", Start: 0.5, End: 4.0, Kind: transcribe.KindSentence},
			{Text: "Snow fell.", Start: 4.0, End: 9.0, Kind: transcribe.KindSentence},
			{Text: "Nobody came.", Start: 9.0, End: 110.0, Kind: transcribe.KindSentence},
		},
		Granularity: transcribe.GranularitySentence,
		Backend:     "whisper",
	}
}

var idAttr = regexp.MustCompile(`\bid="([^"]+)"`)

// anchorIDs extracts span/par-referenced anchor ids from a document.
func textAnchorIDs(doc string) map[string]bool {
	ids := make(map[string]bool)
	for _, m := range idAttr.FindAllStringSubmatch(doc, -1) {
		ids[m[1]] = true
	}
	return ids
}

var textSrc = regexp.MustCompile(`<text src="[^"#]+#([^"]+)"`)

func timingAnchorIDs(doc string) map[string]bool {
	ids := make(map[string]bool)
	for _, m := range textSrc.FindAllStringSubmatch(doc, -1) {
		ids[m[1]] = true
	}
	return ids
}

func TestSynchronizeAnchorBijection(t *testing.T) {
	pair := Synchronize(testChapter(), testTranscript())

	timing := timingAnchorIDs(pair.TimingDoc)
	if len(timing) != len(pair.Anchors) {
		t.Fatalf("timing doc has %d anchors, model has %d", len(timing), len(pair.Anchors))
	}
	text := textAnchorIDs(pair.TextDoc)
	for id := range timing {
		if !text[id] {
			t.Errorf("timing anchor %q missing from text document", id)
		}
	}
	for _, a := range pair.Anchors {
		if !timing[a.ID] {
			t.Errorf("model anchor %q missing from timing document", a.ID)
		}
		if !text[a.ID] {
			t.Errorf("model anchor %q missing from text document", a.ID)
		}
	}
}

func TestSynchronizeTimingMonotonic(t *testing.T) {
	ch := testChapter()
	pair := Synchronize(ch, testTranscript())

	prevStart := -1.0
	prevEnd := 0.0
	for _, a := range pair.Anchors {
		if a.End < a.Start {
			t.Errorf("anchor %q end %v before start %v", a.ID, a.End, a.Start)
		}
		if a.Class == "title" {
			// The structural title clip sits outside the transcript timing
			// sequence and may overlay the first segment.
			continue
		}
		if a.Start < prevStart {
			t.Errorf("anchor %q start %v decreases", a.ID, a.Start)
		}
		if a.Start < prevEnd {
			t.Errorf("anchor %q overlaps previous clip end %v", a.ID, prevEnd)
		}
		prevStart, prevEnd = a.Start, a.End
	}
	if last := pair.Anchors[len(pair.Anchors)-1]; last.End != ch.Duration {
		t.Errorf("final clip ends at %v, want chapter duration %v", last.End, ch.Duration)
	}
}

func TestSynchronizeTitleAnchorFirst(t *testing.T) {
	ch := testChapter()
	pair := Synchronize(ch, testTranscript())

	first := pair.Anchors[0]
	wantID := fmt.Sprintf("title_%03d", ch.Index)
	if first.ID != wantID {
		t.Errorf("first anchor = %q, want %q", first.ID, wantID)
	}
	if first.Start != 0 {
		t.Errorf("title clip starts at %v, want 0", first.Start)
	}
	if first.End != 1.0 {
		t.Errorf("title clip ends at %v, want the nominal 1.0", first.End)
	}
}

func TestSynchronizeTitleClipWhenSpeechStartsAtZero(t *testing.T) {
	ch := testChapter()
	tr := &transcribe.Transcript{
		Segments: []transcribe.Segment{
			{Text: "Right away.", Start: 0.0, End: 5.0, Kind: transcribe.KindSentence},
			{Text: "No pause.", Start: 5.0, End: 120.0, Kind: transcribe.KindSentence},
		},
	}

	pair := Synchronize(ch, tr)
	title := pair.Anchors[0]
	if title.Class != "title" {
		t.Fatalf("first anchor class = %q, want title", title.Class)
	}
	if title.End <= title.Start {
		t.Errorf("title clip = [%v, %v], must not collapse to zero length", title.Start, title.End)
	}
	if title.End != 1.0 {
		t.Errorf("title clip ends at %v, want the nominal 1.0", title.End)
	}
}

func TestSynchronizeAnchorIDsReproducible(t *testing.T) {
	a := Synchronize(testChapter(), testTranscript())
	b := Synchronize(testChapter(), testTranscript())
	if a.TextDoc != b.TextDoc || a.TimingDoc != b.TimingDoc {
		t.Error("same transcript produced different documents")
	}
}

func TestSynchronizeEmptyTranscript(t *testing.T) {
	ch := testChapter()
	pair := Synchronize(ch, &transcribe.Transcript{})

	if len(pair.Anchors) != 2 {
		t.Fatalf("got %d anchors, want title + fallback", len(pair.Anchors))
	}
	fb := pair.Anchors[1]
	if fb.ID != fmt.Sprintf("fallback_%03d", ch.Index) {
		t.Errorf("fallback anchor id = %q", fb.ID)
	}
	if fb.Start != 0 || fb.End != ch.Duration {
		t.Errorf("fallback clip = [%v, %v], want [0, %v]", fb.Start, fb.End, ch.Duration)
	}
	if !strings.Contains(pair.TextDoc, fb.ID) || !strings.Contains(pair.TimingDoc, fb.ID) {
		t.Error("fallback anchor missing from rendered documents")
	}
}

func TestSynchronizeClampsToDuration(t *testing.T) {
	ch := testChapter()
	tr := &transcribe.Transcript{
		Segments: []transcribe.Segment{
			{Text: "spills over", Start: 115.0, End: 130.0, Kind: transcribe.KindSentence},
		},
	}

	pair := Synchronize(ch, tr)
	last := pair.Anchors[len(pair.Anchors)-1]
	if last.End != ch.Duration {
		t.Errorf("clip end = %v, want clamped to %v", last.End, ch.Duration)
	}
}

func TestSynchronizeEscapesText(t *testing.T) {
	ch := testChapter()
	ch.Title = `Ampers&nd <Chapter>`
	tr := &transcribe.Transcript{
		Segments: []transcribe.Segment{
			{Text: `a < b & c`, Start: 0, End: 120, Kind: transcribe.KindSentence},
		},
	}

	pair := Synchronize(ch, tr)
	if strings.Contains(pair.TextDoc, "<Chapter>") {
		t.Error("title not escaped in text document")
	}
	if !strings.Contains(pair.TextDoc, "a &lt; b &amp; c") {
		t.Error("segment text not escaped in text document")
	}
}
