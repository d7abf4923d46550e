package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// serverBackend uploads chapter audio to a remote whisper-compatible server.
// The server returns sentence-level segments, so word granularity degrades to
// sentence. Present whenever a server URL is configured.
type serverBackend struct {
	url string
	c   *http.Client
}

func newServerBackend(url string) *serverBackend {
	return &serverBackend{
		url: strings.TrimRight(url, "/"),
		c:   &http.Client{Timeout: 10 * time.Minute},
	}
}

func (b *serverBackend) Name() string { return "whisper-server" }

type serverResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (b *serverBackend) Transcribe(ctx context.Context, audioPath string) (*RawResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url+"/transcribe", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := b.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper-server %s: %s", resp.Status, string(body))
	}

	var parsed serverResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: whisper-server decode: %v", ErrMalformedOutput, err)
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
