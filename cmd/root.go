package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"mp4-splitter/infrastructure/config"
	"mp4-splitter/infrastructure/logging"

	"github.com/spf13/cobra"
)

// OutputWriter is an interface for writing output (for testing)
type OutputWriter interface {
	io.Writer
}

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mp4-splitter",
	Short: "Cut an MP4 into segments at chosen split points",
	Long: `mp4-splitter cuts a source video into consecutive segments and exports
each selected segment as its own MP4 file:

  - Inspect a video's duration, resolution and frame rate
  - Mark split points in batch or interactively
  - Export selected segments with ffmpeg
  - Upload exported segments to Google Drive
  - Drive the same session over a local HTTP API

Example:
  mp4-splitter split --source talk.mp4 --output out --at 00:10:00.000 --at 00:25:30.000 --tail`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	// Most commands run on flags alone, so a missing file falls back to defaults.
	// A file that exists but does not parse is reported by the commands that need it.
	cfg, cfgErr = config.LoadOrDefault(cfgFile)
	if cfgErr != nil {
		cfg = config.Default()
	}
	logger = logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// requireConfig returns the loaded configuration or the error that kept it from loading
func requireConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", cfgFile, cfgErr)
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// GetLogger returns the process logger, discarding output before config is loaded
func GetLogger() *slog.Logger {
	if logger == nil {
		return logging.Discard()
	}
	return logger
}
