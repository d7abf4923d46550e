package transcribe

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/taleweaver/taleweaver/media"
)

// Transcriber runs recognition over chapters with one backend chosen for the
// whole process, memoizing per-fingerprint and substituting a fallback
// transcript when a chapter's recognition fails. Chapters are processed
// sequentially; backends are single-instance external resources.
type Transcriber struct {
	backend      Backend
	cache        *Cache
	forceRefresh bool
	warnings     int
	log          *logrus.Logger
}

func NewTranscriber(backend Backend, cache *Cache, forceRefresh bool, log *logrus.Logger) *Transcriber {
	return &Transcriber{backend: backend, cache: cache, forceRefresh: forceRefresh, log: log}
}

// Warnings is the number of chapters that fell back during the last run.
func (t *Transcriber) Warnings() int { return t.warnings }

// TranscribeChapters produces one transcript per chapter, keyed by chapter ID.
// A cache hit short-circuits recognition; a forced refresh bypasses reads for
// every chapter. Per-chapter failure is recovered locally with a fallback
// transcript and the run continues.
func (t *Transcriber) TranscribeChapters(ctx context.Context, chapters []media.Chapter, granularity Granularity) (map[string]*Transcript, error) {
	t.warnings = 0
	out := make(map[string]*Transcript, len(chapters))

	for _, ch := range chapters {
		clog := t.log.WithFields(logrus.Fields{"chapter": ch.Index, "title": ch.Title})

		key, err := Fingerprint(ch.Path, granularity)
		if err != nil {
			clog.WithError(err).Warn("cannot fingerprint chapter audio, using fallback")
			out[ch.ID] = FallbackTranscript(ch)
			t.warnings++
			continue
		}

		if !t.forceRefresh {
			if tr, ok := t.cache.Load(key); ok {
				clog.WithField("backend", tr.Backend).Info("loaded cached transcription")
				out[ch.ID] = tr
				continue
			}
		}

		clog.WithField("backend", t.backend.Name()).Info("transcribing chapter")
		tr := t.transcribeOne(ctx, ch, granularity, clog)
		if tr.Backend == BackendFallback {
			t.warnings++
		}
		if err := t.cache.Store(key, tr); err != nil {
			clog.WithError(err).Warn("failed to write transcription cache")
		}
		out[ch.ID] = tr
	}
	return out, nil
}

// transcribeOne invokes the backend once and normalizes its output. Any
// failure, including malformed output, degrades to the fallback transcript.
func (t *Transcriber) transcribeOne(ctx context.Context, ch media.Chapter, granularity Granularity, clog *logrus.Entry) *Transcript {
	raw, err := t.backend.Transcribe(ctx, ch.Path)
	if err != nil {
		clog.WithError(err).Error("recognition failed, using fallback")
		return FallbackTranscript(ch)
	}

	delivered := granularity
	segs, err := Normalize(raw, granularity, ch.Duration)
	if errors.Is(err, ErrWordTimingUnavailable) {
		// Graceful degradation: the backend only times sentences. Surface it
		// through the granularity field rather than fabricating word offsets.
		clog.WithField("backend", t.backend.Name()).
			Warn("backend has no word timing, degrading to sentence granularity")
		delivered = GranularitySentence
		segs, err = Normalize(raw, GranularitySentence, ch.Duration)
	}
	if err != nil {
		clog.WithError(err).Error("could not normalize backend output, using fallback")
		return FallbackTranscript(ch)
	}
	if len(segs) == 0 {
		clog.Warn("recognition produced no segments, using fallback")
		return FallbackTranscript(ch)
	}

	text := strings.TrimSpace(raw.Text)
	if text == "" {
		text = joinSegments(segs)
	}
	return &Transcript{
		Text:        text,
		Segments:    segs,
		Granularity: delivered,
		Backend:     t.backend.Name(),
	}
}

// FallbackTranscript covers a chapter whose recognition failed: one sentence
// segment spanning the whole chapter, carrying the chapter title.
func FallbackTranscript(ch media.Chapter) *Transcript {
	return &Transcript{
		Text: ch.Title,
		Segments: []Segment{{
			Text:  ch.Title,
			Start: 0,
			End:   ch.Duration,
			Kind:  KindSentence,
		}},
		Granularity: GranularitySentence,
		Backend:     BackendFallback,
	}
}

func joinSegments(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
