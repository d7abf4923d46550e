package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taleweaver/taleweaver/config"
	"github.com/taleweaver/taleweaver/pipeline"
	"github.com/taleweaver/taleweaver/transcribe"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	log := logrus.New()

	cmd := &cobra.Command{
		Use:           "taleweaver <audiobook>",
		Short:         "Generate an EPUB 3 with media overlays from an audiobook",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v.SetEnvPrefix("TALEWEAVER")
			v.AutomaticEnv()

			cfg, err := config.Load(v)
			if err != nil {
				return fail(log, err)
			}
			setupLogging(log, cmd, cfg)

			audiobook := args[0]
			if _, err := os.Stat(audiobook); err != nil {
				return fail(log, fmt.Errorf("audiobook file not found: %s", audiobook))
			}

			p := pipeline.NewPipeline(cfg, log)
			if err := p.Run(context.Background(), audiobook); err != nil {
				var unavailable *transcribe.BackendUnavailableError
				if errors.As(err, &unavailable) {
					log.Error(unavailable.Error())
					return err
				}
				return fail(log, err)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "output.epub", "output EPUB filename")
	flags.String("cache-dir", "cache", "cache directory")
	flags.String("granularity", "word", "synchronization granularity (word|sentence)")
	flags.Bool("force-refresh", false, "bypass cached audio and transcriptions")
	flags.Int("max-chapters", 0, "process at most this many chapters (0 = all)")
	flags.String("asr-server", "", "URL of a whisper-compatible transcription server")
	flags.String("epubcheck-jar", "", "path to epubcheck.jar for optional validation")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Bool("debug", false, "maximum debug output")

	must(v.BindPFlag("output", flags.Lookup("output")))
	must(v.BindPFlag("cache_dir", flags.Lookup("cache-dir")))
	must(v.BindPFlag("granularity", flags.Lookup("granularity")))
	must(v.BindPFlag("force_refresh", flags.Lookup("force-refresh")))
	must(v.BindPFlag("max_chapters", flags.Lookup("max-chapters")))
	must(v.BindPFlag("asr.server_url", flags.Lookup("asr-server")))
	must(v.BindPFlag("epubcheck_jar", flags.Lookup("epubcheck-jar")))

	return cmd
}

func setupLogging(log *logrus.Logger, cmd *cobra.Command, cfg *config.Root) {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})

	debug, _ := cmd.Flags().GetBool("debug")
	verbose, _ := cmd.Flags().GetBool("verbose")
	switch {
	case debug || verbose:
		log.SetLevel(logrus.DebugLevel)
	default:
		if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			log.SetLevel(lvl)
		} else {
			log.SetLevel(logrus.InfoLevel)
		}
	}
}

func fail(log *logrus.Logger, err error) error {
	log.Error(err.Error())
	return err
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
