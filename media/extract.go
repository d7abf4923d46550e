package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ExtractOptions controls chapter demuxing.
type ExtractOptions struct {
	CacheDir     string
	Bitrate      string // e.g. "128k"
	Codec        string // e.g. "mp3"
	ForceRefresh bool
	MaxChapters  int // 0 = all
}

// Extractor demuxes audiobook chapters into per-chapter audio files under a
// cache directory, skipping files that already exist.
type Extractor struct {
	opts ExtractOptions
	log  *logrus.Logger
}

func NewExtractor(opts ExtractOptions, log *logrus.Logger) *Extractor {
	if opts.Bitrate == "" {
		opts.Bitrate = "128k"
	}
	if opts.Codec == "" {
		opts.Codec = "mp3"
	}
	return &Extractor{opts: opts, log: log}
}

// ExtractChapters reads chapter boundaries from the container and demuxes each
// chapter to its own MP3. Returns chapters in playback order with 1-based
// indexes. An audiobook without chapter markers yields an empty slice.
func (e *Extractor) ExtractChapters(ctx context.Context, audiobookPath string) ([]Chapter, error) {
	if err := os.MkdirAll(e.opts.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio cache dir: %w", err)
	}

	res, err := runProbe(ctx, audiobookPath)
	if err != nil {
		return nil, err
	}
	chapters := chaptersFromProbe(res)
	if len(chapters) == 0 {
		return nil, nil
	}
	if e.opts.MaxChapters > 0 && len(chapters) > e.opts.MaxChapters {
		chapters = chapters[:e.opts.MaxChapters]
		e.log.Infof("limited to first %d chapters", e.opts.MaxChapters)
	}

	for i := range chapters {
		ch := &chapters[i]
		ch.Filename = fmt.Sprintf("%03d_%s.%s", ch.Index, sanitizeFilename(ch.Title), e.opts.Codec)
		ch.Path = filepath.Join(e.opts.CacheDir, ch.Filename)

		if _, err := os.Stat(ch.Path); err == nil && !e.opts.ForceRefresh {
			e.log.WithFields(logrus.Fields{"chapter": ch.Index, "path": ch.Path}).
				Debug("chapter audio already extracted")
			continue
		}
		e.log.WithFields(logrus.Fields{"chapter": ch.Index, "title": ch.Title}).
			Info("extracting chapter audio")
		if err := e.extractOne(ctx, audiobookPath, ch); err != nil {
			return nil, fmt.Errorf("extract chapter %d: %w", ch.Index, err)
		}
	}
	return chapters, nil
}

func (e *Extractor) extractOne(ctx context.Context, input string, ch *Chapter) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", input,
		"-ss", strconv.FormatFloat(ch.StartTime, 'f', -1, 64),
		"-to", strconv.FormatFloat(ch.EndTime, 'f', -1, 64),
		"-c:a", e.opts.Codec,
		"-b:a", e.opts.Bitrate,
		"-y",
		ch.Path,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		tail := string(out)
		if lines := strings.Split(strings.TrimSpace(tail), "\n"); len(lines) > 3 {
			tail = strings.Join(lines[len(lines)-3:], "\n")
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, tail)
	}
	return nil
}
