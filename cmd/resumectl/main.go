// Command resumectl renders resumes to PDF from the command line and runs
// maintenance tasks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"resume-builder/internal/config"
	"resume-builder/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "resumectl",
	Short:         "Resume render-to-PDF tool",
	Long:          "resumectl renders resume snapshots to A4 PDFs with headless Chrome, issues access keys and applies database migrations.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline progress")
}

// loadConfig reads .env, the config file and the environment, and installs
// the logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	level, _ := logger.ParseLevel(cfg.Log.Level)
	if !verbose && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	return cfg, logger.New(level, cfg.Log.Format, os.Stderr), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
