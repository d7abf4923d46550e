package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Root is the full run configuration. It is computed once in main and passed
// explicitly to every component that needs it.
type Root struct {
	Output       string `mapstructure:"output"`
	CacheDir     string `mapstructure:"cache_dir"`
	Granularity  string `mapstructure:"granularity"`
	ForceRefresh bool   `mapstructure:"force_refresh"`
	MaxChapters  int    `mapstructure:"max_chapters"`
	LogLevel     string `mapstructure:"log_level"`

	Audio struct {
		Bitrate string `mapstructure:"bitrate"`
		Codec   string `mapstructure:"codec"`
	} `mapstructure:"audio"`

	ASR struct {
		// ServerURL enables the remote whisper-server backend when set.
		ServerURL    string `mapstructure:"server_url"`
		WhisperModel string `mapstructure:"whisper_model"`
	} `mapstructure:"asr"`

	EpubcheckJar string `mapstructure:"epubcheck_jar"`
}

// SetDefaults registers every configuration default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", "output.epub")
	v.SetDefault("cache_dir", "cache")
	v.SetDefault("granularity", "word")
	v.SetDefault("force_refresh", false)
	v.SetDefault("max_chapters", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("audio.bitrate", "128k")
	v.SetDefault("audio.codec", "mp3")
	v.SetDefault("asr.server_url", "")
	v.SetDefault("asr.whisper_model", "base")
	v.SetDefault("epubcheck_jar", "")
}

// Load resolves the configuration from v: defaults, then an optional
// taleweaver.yaml in the working directory, then TALEWEAVER_* environment
// variables, then any flags already bound by the caller.
func Load(v *viper.Viper) (*Root, error) {
	SetDefaults(v)

	v.SetConfigName("taleweaver")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values that would otherwise only fail deep inside a run.
func (c *Root) Validate() error {
	switch c.Granularity {
	case "word", "sentence":
	default:
		return fmt.Errorf("invalid granularity %q (want word or sentence)", c.Granularity)
	}
	if c.MaxChapters < 0 {
		return fmt.Errorf("max_chapters must be >= 0, got %d", c.MaxChapters)
	}
	return nil
}

// AudioCacheDir is where extracted per-chapter audio lives.
func (c *Root) AudioCacheDir() string { return filepath.Join(c.CacheDir, "audio") }

// TranscriptionCacheDir is where serialized transcripts live.
func (c *Root) TranscriptionCacheDir() string { return filepath.Join(c.CacheDir, "transcriptions") }
