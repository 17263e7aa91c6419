package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keshon/ytdlp-extractor/internal/config"
	"github.com/keshon/ytdlp-extractor/internal/logger"
	"github.com/keshon/ytdlp-extractor/internal/music/source_resolver"
	"github.com/keshon/ytdlp-extractor/internal/music/sources/youtube"
)

// app is built once per invocation in PersistentPreRunE.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *source_resolver.Registry
}

var current *app

var rootCmd = &cobra.Command{
	Use:           "ytextract",
	Short:         "Resolve and stream YouTube audio through yt-dlp",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		log, err := logger.New(logger.Config{
			Level:      cfg.LogLevel,
			File:       cfg.LogFile,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAge,
		})
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}

		registry := source_resolver.New(log)
		if err := registry.Register(youtube.NewFromConfig(cfg, log)); err != nil {
			return err
		}

		current = &app{cfg: cfg, log: log, registry: registry}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current == nil {
			return nil
		}
		err := current.registry.Close()
		_ = current.log.Sync()
		return err
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd, relatedCmd, streamCmd, validateCmd)
}
