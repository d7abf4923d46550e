package transcribe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// whisperCppBackend drives whisper.cpp's whisper-cli with timestamps disabled.
// It yields plain text only; the producer turns that into a single
// whole-chapter segment.
type whisperCppBackend struct{}

func (b *whisperCppBackend) Name() string { return "whisper-cpp" }

func (b *whisperCppBackend) Transcribe(ctx context.Context, audioPath string) (*RawResult, error) {
	cmd := exec.CommandContext(ctx, "whisper-cli", "--no-timestamps", "-f", audioPath)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("whisper-cli: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("whisper-cli: %w", err)
	}
	return &RawResult{Text: strings.TrimSpace(string(out))}, nil
}
