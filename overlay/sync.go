package overlay

import (
	"fmt"
	"html"
	"strings"

	"github.com/taleweaver/taleweaver/media"
	"github.com/taleweaver/taleweaver/transcribe"
)

// Anchor is one addressable point shared by a chapter's text document and its
// timing document. The anchor set of both documents is identical by
// construction.
type Anchor struct {
	ID    string
	Text  string
	Start float64
	End   float64
	Class string // span class in the text document: word, sentence, title, fallback
}

// Pair is one chapter's synchronized output: the text document with anchored
// spans and the timing document with one time-container per anchor, both
// referencing the chapter's own extracted audio file.
type Pair struct {
	ChapterID     string
	ChapterIndex  int
	Title         string
	AudioFilename string
	Duration      float64
	XHTMLName     string
	SMILName      string
	TextDoc       string
	TimingDoc     string
	Anchors       []Anchor // timing order, title anchor first
}

// Synchronize binds one chapter's transcript to its audio. Anchor ids derive
// from the chapter and segment ordinals, so reruns over the same transcript
// reproduce them exactly. The final clip is extended to the chapter duration
// so the timing document covers the whole audio file.
func Synchronize(ch media.Chapter, tr *transcribe.Transcript) *Pair {
	p := &Pair{
		ChapterID:     ch.ID,
		ChapterIndex:  ch.Index,
		Title:         ch.Title,
		AudioFilename: ch.Filename,
		Duration:      ch.Duration,
		XHTMLName:     fmt.Sprintf("chapter_%03d.xhtml", ch.Index),
		SMILName:      fmt.Sprintf("chapter_%03d.smil", ch.Index),
	}

	var segs []transcribe.Segment
	if tr != nil {
		segs = tr.Segments
	}
	p.Anchors = buildAnchors(ch, segs)
	paragraphs := Paragraphs(segs)
	p.TextDoc = renderXHTML(p, paragraphs, len(segs) == 0)
	p.TimingDoc = renderSMIL(p)
	return p
}

// buildAnchors lays out the timing sequence: the structural title anchor, then
// one anchor per segment clamped into [0, duration] with the last clip end
// pinned to the chapter duration. The title anchor always keeps a nominal
// one-second clip; it is scaffolding, not recognized speech, and may overlay
// the first segment's clip. An empty transcript (defensive; fallback
// transcripts normally prevent it) yields a single whole-chapter anchor.
func buildAnchors(ch media.Chapter, segs []transcribe.Segment) []Anchor {
	title := Anchor{
		ID:    fmt.Sprintf("title_%03d", ch.Index),
		Text:  ch.Title,
		Start: 0,
		End:   minFloat(1.0, ch.Duration),
		Class: "title",
	}
	if len(segs) == 0 {
		return []Anchor{title, {
			ID:    fmt.Sprintf("fallback_%03d", ch.Index),
			Text:  fmt.Sprintf("Audio content for %s", ch.Title),
			Start: 0,
			End:   ch.Duration,
			Class: "fallback",
		}}
	}

	anchors := make([]Anchor, 0, len(segs)+1)
	anchors = append(anchors, title)
	for i, seg := range segs {
		start := minFloat(seg.Start, ch.Duration)
		end := minFloat(seg.End, ch.Duration)
		anchors = append(anchors, Anchor{
			ID:    fmt.Sprintf("seg_%03d_%03d", ch.Index, i),
			Text:  seg.Text,
			Start: start,
			End:   end,
			Class: string(seg.Kind),
		})
	}
	anchors[len(anchors)-1].End = ch.Duration
	return anchors
}

func renderXHTML(p *Pair, paragraphs [][]transcribe.Segment, fallback bool) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\" xmlns:epub=\"http://www.idpf.org/2007/ops\" lang=\"en\" xml:lang=\"en\">\n")
	b.WriteString("<head>\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", html.EscapeString(p.Title))
	b.WriteString("    <link rel=\"stylesheet\" href=\"../Styles/style.css\" type=\"text/css\"/>\n")
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "    <section epub:type=\"chapter\" id=\"chapter_%03d\">\n", p.ChapterIndex)
	fmt.Fprintf(&b, "        <h1 class=\"chapter-title\" id=\"title_%03d\"><span>%s</span></h1>\n",
		p.ChapterIndex, html.EscapeString(p.Title))

	if fallback {
		fmt.Fprintf(&b, "        <p class=\"body-text\"><span id=\"fallback_%03d\" class=\"fallback\">Audio content for %s</span></p>\n",
			p.ChapterIndex, html.EscapeString(p.Title))
	} else {
		ordinal := 0
		for _, para := range paragraphs {
			spans := make([]string, 0, len(para))
			for _, seg := range para {
				spans = append(spans, fmt.Sprintf("<span id=\"seg_%03d_%03d\" class=\"%s\">%s</span>",
					p.ChapterIndex, ordinal, seg.Kind, html.EscapeString(seg.Text)))
				ordinal++
			}
			fmt.Fprintf(&b, "        <p class=\"body-text\">%s</p>\n", strings.Join(spans, " "))
		}
	}

	b.WriteString("    </section>\n</body>\n</html>\n")
	return b.String()
}

func renderSMIL(p *Pair) string {
	audioSrc := "../Audio/" + p.AudioFilename

	var b strings.Builder
	b.WriteString("<smil xmlns=\"http://www.w3.org/ns/SMIL\" xmlns:epub=\"http://www.idpf.org/2007/ops\" version=\"3.0\">\n")
	b.WriteString("<body>\n")
	fmt.Fprintf(&b, "    <seq id=\"seq_%03d\" epub:textref=\"%s\" epub:type=\"bodymatter chapter\">\n",
		p.ChapterIndex, p.XHTMLName)
	for _, a := range p.Anchors {
		fmt.Fprintf(&b, "        <par id=\"par_%s\">\n", a.ID)
		fmt.Fprintf(&b, "            <text src=\"%s#%s\"/>\n", p.XHTMLName, a.ID)
		fmt.Fprintf(&b, "            <audio clipBegin=\"%s\" clipEnd=\"%s\" src=\"%s\"/>\n",
			FormatClip(a.Start), FormatClip(a.End), audioSrc)
		b.WriteString("        </par>\n")
	}
	b.WriteString("    </seq>\n</body>\n</smil>\n")
	return b.String()
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
