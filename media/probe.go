package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// probeResult mirrors the subset of ffprobe's JSON output we read.
type probeResult struct {
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Chapters []probeChapter `json:"chapters"`
}

type probeChapter struct {
	ID        json.Number       `json:"id"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Tags      map[string]string `json:"tags"`
}

func runProbe(ctx context.Context, path string) (*probeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_chapters",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("ffprobe %s: %s", path, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	var res probeResult
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return &res, nil
}

// Probe reads audiobook-level metadata from the container tags.
func Probe(ctx context.Context, path string) (*Metadata, error) {
	res, err := runProbe(ctx, path)
	if err != nil {
		return nil, err
	}
	return metadataFromProbe(res), nil
}

func metadataFromProbe(res *probeResult) *Metadata {
	tags := res.Format.Tags
	title := tagOr(tags, "title", tagOr(tags, "album", "Unknown Title"))
	author := tagOr(tags, "artist", "Unknown Author")
	dur, _ := strconv.ParseFloat(res.Format.Duration, 64)
	return &Metadata{Title: title, Author: author, Duration: dur}
}

func tagOr(tags map[string]string, key, fallback string) string {
	if v, ok := tags[key]; ok && v != "" {
		return v
	}
	return fallback
}

// chaptersFromProbe converts ffprobe chapter records into Chapter values,
// tolerating missing tags and unparsable offsets.
func chaptersFromProbe(res *probeResult) []Chapter {
	chapters := make([]Chapter, 0, len(res.Chapters))
	for i, pc := range res.Chapters {
		start, _ := strconv.ParseFloat(pc.StartTime, 64)
		end, _ := strconv.ParseFloat(pc.EndTime, 64)
		title := tagOr(pc.Tags, "title", fmt.Sprintf("Chapter %d", i+1))
		id := pc.ID.String()
		if id == "" {
			id = strconv.Itoa(i)
		}
		chapters = append(chapters, Chapter{
			ID:        id,
			Index:     i + 1,
			Title:     title,
			StartTime: start,
			EndTime:   end,
			Duration:  end - start,
		})
	}
	return chapters
}
