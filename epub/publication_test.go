package epub

import (
	"math"
	"strings"
	"testing"

	"github.com/taleweaver/taleweaver/media"
	"github.com/taleweaver/taleweaver/overlay"
	"github.com/taleweaver/taleweaver/transcribe"
)

func testMeta() *media.Metadata {
	return &media.Metadata{Title: "A Long Story", Author: "Nobody Particular"}
}

func testChapters() []media.Chapter {
	return []media.Chapter{
		{ID: "10", Index: 1, Title: "One", Filename: "001_One.mp3", Duration: 60},
		{ID: "11", Index: 2, Title: "Two", Filename: "002_Two.mp3", Duration: 90},
	}
}

func testPairs(chapters []media.Chapter) map[string]*overlay.Pair {
	pairs := make(map[string]*overlay.Pair, len(chapters))
	for _, ch := range chapters {
		tr := &transcribe.Transcript{
			Segments: []transcribe.Segment{
				{Text: "Hello there.", Start: 0, End: ch.Duration / 2, Kind: transcribe.KindSentence},
				{Text: "And goodbye.", Start: ch.Duration / 2, End: ch.Duration - 1, Kind: transcribe.KindSentence},
			},
			Granularity: transcribe.GranularitySentence,
			Backend:     "whisper",
		}
		pairs[ch.ID] = overlay.Synchronize(ch, tr)
	}
	return pairs
}

func TestAssemble(t *testing.T) {
	chapters := testChapters()
	pub, err := Assemble(testMeta(), chapters, testPairs(chapters))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if len(pub.Pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pub.Pairs))
	}
	for i, pair := range pub.Pairs {
		if pair.ChapterIndex != i+1 {
			t.Errorf("spine position %d holds chapter %d", i+1, pair.ChapterIndex)
		}
	}
	if want := 150.0; math.Abs(pub.TotalDuration-want) > 1e-6 {
		t.Errorf("total duration = %v, want %v (sum of clip maxima)", pub.TotalDuration, want)
	}
	if pub.ID == "" {
		t.Error("publication id not assigned")
	}
}

func TestAssembleMissingPair(t *testing.T) {
	chapters := testChapters()
	pairs := testPairs(chapters)
	delete(pairs, "11")

	if _, err := Assemble(testMeta(), chapters, pairs); err == nil {
		t.Fatal("expected error for chapter without overlay pair")
	}
}

func TestAssembleSpineGap(t *testing.T) {
	chapters := testChapters()
	chapters[1].Index = 3 // gap: 1, 3
	pairs := testPairs(chapters)

	if _, err := Assemble(testMeta(), chapters, pairs); err == nil {
		t.Fatal("expected error for spine gap")
	}
}

func TestAssembleDuplicateAnchors(t *testing.T) {
	chapters := testChapters()
	pairs := testPairs(chapters)
	pair := pairs["10"]
	pair.Anchors = append(pair.Anchors, pair.Anchors[1])

	if _, err := Assemble(testMeta(), chapters, pairs); err == nil {
		t.Fatal("expected error for duplicate anchor id")
	}
}

func TestAssembleShortTiming(t *testing.T) {
	chapters := testChapters()
	pairs := testPairs(chapters)
	pair := pairs["10"]
	pair.Anchors[len(pair.Anchors)-1].End = 10 // no longer covers the chapter

	if _, err := Assemble(testMeta(), chapters, pairs); err == nil {
		t.Fatal("expected error when timing does not cover the chapter")
	}
}

func TestRenderOPFStructure(t *testing.T) {
	chapters := testChapters()
	pub, err := Assemble(testMeta(), chapters, testPairs(chapters))
	if err != nil {
		t.Fatal(err)
	}

	opf, err := renderOPF(pub, testTime())
	if err != nil {
		t.Fatal(err)
	}
	doc := string(opf)

	for _, want := range []string{
		"urn:uuid:" + pub.ID,
		"<dc:title>A Long Story</dc:title>",
		"<dc:creator>Nobody Particular</dc:creator>",
		`media-overlay="smil_001"`,
		`href="Audio/001_One.mp3"`,
		`href="Text/chapter_002.smil"`,
		`idref="xhtml_001"`,
		`idref="xhtml_002"`,
		`property="media:duration"`,
		overlay.FormatClip(pub.TotalDuration),
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("package document missing %q", want)
		}
	}
	if strings.Index(doc, `idref="xhtml_001"`) > strings.Index(doc, `idref="xhtml_002"`) {
		t.Error("spine is not in chapter order")
	}
}

func TestRenderNavAndNCX(t *testing.T) {
	chapters := testChapters()
	pub, err := Assemble(testMeta(), chapters, testPairs(chapters))
	if err != nil {
		t.Fatal(err)
	}

	nav := renderNav(pub)
	ncx := renderNCX(pub)
	for _, want := range []string{"chapter_001.xhtml", "chapter_002.xhtml"} {
		if !strings.Contains(nav, want) {
			t.Errorf("nav missing %q", want)
		}
		if !strings.Contains(ncx, want) {
			t.Errorf("ncx missing %q", want)
		}
	}
	if !strings.Contains(ncx, `playOrder="2"`) {
		t.Error("ncx missing play order")
	}
}
