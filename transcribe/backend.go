package transcribe

import (
	"context"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Backend is one speech-recognition runtime. Implementations are invoked once
// per chapter with the chapter's audio file and return their native output
// shape; Normalize turns that into segments. Backends are stateful external
// resources and are not assumed to be safe for concurrent use.
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, audioPath string) (*RawResult, error)
}

// DetectOptions feeds backend detection. ServerURL enables the remote
// whisper-server backend; WhisperModel is passed to the whisper CLI.
type DetectOptions struct {
	ServerURL    string
	WhisperModel string
}

// Detect picks the recognition backend for the whole run. The priority order
// is fixed; the first backend whose runtime is present wins. Detection happens
// exactly once at startup, never per chapter.
func Detect(opts DetectOptions, log *logrus.Logger) (Backend, error) {
	candidates := []struct {
		present func() bool
		build   func() Backend
		hint    string
	}{
		{
			present: func() bool { return commandPresent("parakeet-mlx") },
			build:   func() Backend { return &parakeetBackend{} },
			hint:    "parakeet-mlx (recommended on Apple Silicon): pipx install parakeet-mlx",
		},
		{
			present: func() bool { return commandPresent("whisper") },
			build:   func() Backend { return &whisperBackend{model: opts.WhisperModel} },
			hint:    "OpenAI Whisper: pip install openai-whisper",
		},
		{
			present: func() bool { return opts.ServerURL != "" },
			build:   func() Backend { return newServerBackend(opts.ServerURL) },
			hint:    "a whisper server: set asr.server_url / --asr-server",
		},
		{
			present: func() bool { return commandPresent("whisper-cli") },
			build:   func() Backend { return &whisperCppBackend{} },
			hint:    "whisper.cpp: install whisper-cli",
		},
	}

	var hints []string
	for _, c := range candidates {
		if c.present() {
			b := c.build()
			log.WithField("backend", b.Name()).Info("selected recognition backend")
			return b, nil
		}
		hints = append(hints, c.hint)
	}
	return nil, &BackendUnavailableError{Hints: hints}
}

func commandPresent(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
