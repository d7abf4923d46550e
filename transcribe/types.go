// Package transcribe turns chapter audio into timed text segments using
// whichever speech-recognition backend is installed, with per-fingerprint
// caching and whole-chapter fallbacks when recognition fails.
package transcribe

import (
	"errors"
	"fmt"
	"strings"
)

// Granularity is the timing detail requested from recognition.
type Granularity string

const (
	GranularityWord     Granularity = "word"
	GranularitySentence Granularity = "sentence"
)

// SegmentKind tags one segment as a word or a sentence span.
type SegmentKind string

const (
	KindWord     SegmentKind = "word"
	KindSentence SegmentKind = "sentence"
)

// Segment is one timed text span within a chapter. Start and End are seconds
// into the chapter's own audio file, End >= Start. Segments in a transcript
// are non-overlapping and ordered by Start.
type Segment struct {
	Text  string      `yaml:"text" json:"text"`
	Start float64     `yaml:"start" json:"start"`
	End   float64     `yaml:"end" json:"end"`
	Kind  SegmentKind `yaml:"kind" json:"kind"`
}

// Transcript is the recognized content of one chapter. Backend records which
// recognizer produced it ("fallback" when recognition failed); Granularity is
// the granularity actually delivered, which may be coarser than requested.
type Transcript struct {
	Text        string      `yaml:"text" json:"text"`
	Segments    []Segment   `yaml:"segments" json:"segments"`
	Granularity Granularity `yaml:"granularity" json:"granularity"`
	Backend     string      `yaml:"backend" json:"backend"`
}

// RawResult is a backend's native output before normalization. Exactly one of
// the following holds: Sentences carry nested Tokens (word-capable backends),
// Sentences carry timing only, or only Text is set (no timing at all).
type RawResult struct {
	Text      string
	Sentences []RawSentence
}

// RawSentence is one sentence-level span as emitted by a backend.
type RawSentence struct {
	Text   string
	Start  float64
	End    float64
	Tokens []RawToken
}

// RawToken is one sub-word token inside a sentence. A token whose text begins
// with a space opens a new word.
type RawToken struct {
	Text  string
	Start float64
	End   float64
}

// BackendFallback is the provenance tag of transcripts synthesized after a
// recognition failure.
const BackendFallback = "fallback"

// ErrWordTimingUnavailable signals that word granularity was requested from a
// backend that only delivers sentence-level timing. Callers degrade to
// sentence granularity instead of fabricating word offsets.
var ErrWordTimingUnavailable = errors.New("word timing not available from backend")

// ErrMalformedOutput signals structurally unexpected backend output. It is
// recovered exactly like a recognition failure.
var ErrMalformedOutput = errors.New("malformed backend output")

// BackendUnavailableError is returned when no recognition backend is
// installed. It is fatal for the whole run.
type BackendUnavailableError struct {
	Hints []string
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("no speech recognition backend found; install one of:\n  %s",
		strings.Join(e.Hints, "\n  "))
}
