package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// whisperBackend drives the OpenAI Whisper CLI. Its JSON output carries
// sentence-level segments only, so word granularity degrades to sentence.
type whisperBackend struct {
	model string // e.g. "base"
}

func (b *whisperBackend) Name() string { return "whisper" }

type whisperOutput struct {
	Text     string `json:"text"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

func (b *whisperBackend) Transcribe(ctx context.Context, audioPath string) (*RawResult, error) {
	outDir, err := os.MkdirTemp("", "taleweaver-whisper-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	model := b.model
	if model == "" {
		model = "base"
	}
	cmd := exec.CommandContext(ctx, "whisper",
		audioPath,
		"--model", model,
		"--output_format", "json",
		"--output_dir", outDir,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper: %w: %s", err, strings.TrimSpace(string(out)))
	}

	jsonPath, err := findJSON(outDir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var parsed whisperOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: whisper json: %v", ErrMalformedOutput, err)
	}

	raw := &RawResult{Text: parsed.Text}
	for _, s := range parsed.Segments {
		raw.Sentences = append(raw.Sentences, RawSentence{
			Text:  strings.TrimSpace(s.Text),
			Start: s.Start,
			End:   s.End,
		})
	}
	return raw, nil
}
