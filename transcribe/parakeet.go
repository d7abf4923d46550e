package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// parakeetBackend drives the parakeet-mlx CLI. Its JSON output carries
// sentences with nested sub-word tokens, so it can honor word granularity.
type parakeetBackend struct{}

func (b *parakeetBackend) Name() string { return "parakeet-mlx" }

// parakeetOutput mirrors the CLI's JSON file.
type parakeetOutput struct {
	Text      string `json:"text"`
	Sentences []struct {
		Text   string  `json:"text"`
		Start  float64 `json:"start"`
		End    float64 `json:"end"`
		Tokens []struct {
			Text  string  `json:"text"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"tokens"`
	} `json:"sentences"`
}

func (b *parakeetBackend) Transcribe(ctx context.Context, audioPath string) (*RawResult, error) {
	outDir, err := os.MkdirTemp("", "taleweaver-parakeet-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, "parakeet-mlx",
		"--output-format", "json",
		"--highlight-words",
		"--output-dir", outDir,
		audioPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("parakeet-mlx: %w: %s", err, strings.TrimSpace(string(out)))
	}

	jsonPath, err := findJSON(outDir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var parsed parakeetOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parakeet-mlx json: %v", ErrMalformedOutput, err)
	}

	raw := &RawResult{Text: parsed.Text}
	for _, s := range parsed.Sentences {
		sent := RawSentence{Text: s.Text, Start: s.Start, End: s.End}
		for _, t := range s.Tokens {
			sent.Tokens = append(sent.Tokens, RawToken{Text: t.Text, Start: t.Start, End: t.End})
		}
		raw.Sentences = append(raw.Sentences, sent)
	}
	return raw, nil
}

func findJSON(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: no json output from parakeet-mlx", ErrMalformedOutput)
}
