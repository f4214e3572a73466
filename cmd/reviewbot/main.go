package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/user/reviewbot/internal/config"
	"github.com/user/reviewbot/internal/logging"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "reviewbot",
	Short:        "Talk to the configured LLM backend the way the review pipeline does",
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(loadDotEnv)
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", filepath.Join(os.Getenv("HOME"), ".reviewbot", "config.json"), "config file path")
}

// loadDotEnv reads .env from the working directory if present. Variables
// already set in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to read .env: %v\n", err)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) *slog.Logger {
	logger := logging.New(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
