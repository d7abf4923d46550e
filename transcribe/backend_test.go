package transcribe

import (
	"errors"
	"strings"
	"testing"
)

func TestDetectNoneAvailable(t *testing.T) {
	t.Setenv("PATH", t.TempDir()) // no recognizers installed

	_, err := Detect(DetectOptions{}, quietLogger())
	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want BackendUnavailableError", err)
	}
	msg := unavailable.Error()
	for _, hint := range []string{"parakeet-mlx", "openai-whisper", "whisper-cli"} {
		if !strings.Contains(msg, hint) {
			t.Errorf("error message missing install hint %q", hint)
		}
	}
}

func TestDetectServerWhenConfigured(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	b, err := Detect(DetectOptions{ServerURL: "http://localhost:9000"}, quietLogger())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if b.Name() != "whisper-server" {
		t.Errorf("selected %q, want whisper-server", b.Name())
	}
}
