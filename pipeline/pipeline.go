// Package pipeline runs a whole conversion: probe the audiobook, extract
// chapter audio, transcribe, synchronize overlays, and write the EPUB.
package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/taleweaver/taleweaver/config"
	"github.com/taleweaver/taleweaver/epub"
	"github.com/taleweaver/taleweaver/media"
	"github.com/taleweaver/taleweaver/overlay"
	"github.com/taleweaver/taleweaver/transcribe"
)

type Pipeline struct {
	cfg *config.Root
	log *logrus.Logger
}

func NewPipeline(cfg *config.Root, log *logrus.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log}
}

// Run converts one audiobook into an EPUB at cfg.Output. Chapters are
// processed strictly in order; recognition backends are single-instance
// external tools and are never invoked concurrently. The run fails before any
// chapter work when no backend is installed; per-chapter recognition failures
// fall back and the run continues.
func (p *Pipeline) Run(ctx context.Context, audiobookPath string) error {
	if err := media.CheckTools(); err != nil {
		return err
	}

	// Backend selection happens exactly once, up front, so a missing runtime
	// aborts before any extraction work.
	backend, err := transcribe.Detect(transcribe.DetectOptions{
		ServerURL:    p.cfg.ASR.ServerURL,
		WhisperModel: p.cfg.ASR.WhisperModel,
	}, p.log)
	if err != nil {
		return err
	}

	meta, err := media.Probe(ctx, audiobookPath)
	if err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{"title": meta.Title, "author": meta.Author}).
		Info("processing audiobook")

	extractor := media.NewExtractor(media.ExtractOptions{
		CacheDir:     p.cfg.AudioCacheDir(),
		Bitrate:      p.cfg.Audio.Bitrate,
		Codec:        p.cfg.Audio.Codec,
		ForceRefresh: p.cfg.ForceRefresh,
		MaxChapters:  p.cfg.MaxChapters,
	}, p.log)
	chapters, err := extractor.ExtractChapters(ctx, audiobookPath)
	if err != nil {
		return err
	}
	if len(chapters) == 0 {
		return fmt.Errorf("no chapters found in audiobook metadata")
	}
	p.log.Infof("found %d chapters", len(chapters))

	cache, err := transcribe.NewCache(p.cfg.TranscriptionCacheDir(), p.log)
	if err != nil {
		return err
	}
	transcriber := transcribe.NewTranscriber(backend, cache, p.cfg.ForceRefresh, p.log)
	transcripts, err := transcriber.TranscribeChapters(ctx, chapters, transcribe.Granularity(p.cfg.Granularity))
	if err != nil {
		return err
	}

	pairs := make(map[string]*overlay.Pair, len(chapters))
	for _, ch := range chapters {
		pairs[ch.ID] = overlay.Synchronize(ch, transcripts[ch.ID])
	}

	pub, err := epub.Assemble(meta, chapters, pairs)
	if err != nil {
		return err
	}
	if err := epub.Write(pub, p.cfg.Output, p.log); err != nil {
		return err
	}

	if n := transcriber.Warnings(); n > 0 {
		p.log.Warnf("%d of %d chapters used fallback transcriptions", n, len(chapters))
	}
	epub.Validate(ctx, p.cfg.Output, p.cfg.EpubcheckJar, p.log)
	return nil
}
