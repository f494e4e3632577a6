package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridlock/core/internal/config"
)

// configPath points at an optional YAML configuration file. When empty,
// defaults plus GRIDLOCK_* environment variables apply.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "gridlock",
	Short: "Analyze resource-allocation snapshots for deadlocks",
	Long: `gridlock detects deadlocks in a snapshot of a resource-allocation state
(processes, resource types, allocations, outstanding requests) and suggests
recovery actions: minimal process-termination sets and verified resource
preemptions.

Detection runs either wait-for graph cycle detection (single-instance
resources) or the general work/finish reachability simulation.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads configuration and installs the configured slog
// default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	return cfg, nil
}
