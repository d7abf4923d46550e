package transcribe

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// cacheVersion is bumped whenever the record schema changes; records with any
// other version are treated as misses and re-recognized.
const cacheVersion = 1

// cacheRecord is the on-disk transcript format, one YAML file per fingerprint.
type cacheRecord struct {
	Version     int         `yaml:"version"`
	Backend     string      `yaml:"backend"`
	Granularity Granularity `yaml:"granularity"`
	Text        string      `yaml:"text"`
	Segments    []Segment   `yaml:"segments"`
}

// Cache memoizes transcripts per audio fingerprint. Keys are unique per
// (audio, granularity), so sequential chapter processing never contends on a
// key; a single write happens via temp file + rename.
type Cache struct {
	dir string
	log *logrus.Logger
}

func NewCache(dir string, log *logrus.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcription cache dir: %w", err)
	}
	return &Cache{dir: dir, log: log}, nil
}

// Fingerprint derives the cache key from the audio file's name, its
// modification time, and the requested granularity. The key changes whenever
// the source audio changes.
func Fingerprint(audioPath string, granularity Granularity) (string, error) {
	fi, err := os.Stat(audioPath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", audioPath, err)
	}
	content := fmt.Sprintf("%s_%d_%s", filepath.Base(audioPath), fi.ModTime().UnixNano(), granularity)
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:]), nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".yaml")
}

// Load returns the cached transcript for key, or (nil, false) on a miss.
// Corrupt or out-of-version records count as misses, never as errors.
func (c *Cache) Load(key string) (*Transcript, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var rec cacheRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		c.log.WithFields(logrus.Fields{"key": key, "error": err}).
			Warn("corrupt cache record, re-recognizing")
		return nil, false
	}
	if rec.Version != cacheVersion {
		c.log.WithFields(logrus.Fields{"key": key, "version": rec.Version}).
			Warn("cache record version mismatch, re-recognizing")
		return nil, false
	}
	return &Transcript{
		Text:        rec.Text,
		Segments:    rec.Segments,
		Granularity: rec.Granularity,
		Backend:     rec.Backend,
	}, true
}

// Store writes the transcript atomically for its key.
func (c *Cache) Store(key string, tr *Transcript) error {
	rec := cacheRecord{
		Version:     cacheVersion,
		Backend:     tr.Backend,
		Granularity: tr.Granularity,
		Text:        tr.Text,
		Segments:    tr.Segments,
	}
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("marshal cache record: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}
