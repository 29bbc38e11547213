package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/cobra"

	"daytrack-backend/config"
)

const defaultConfigPath = "./config/config.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "daytrackd",
	Short: "Daytrack keeps a gapless, categorized timeline of your day",
	Long: `daytrackd records the day as adjacent time slots, guesses categories
from places the user confirmed before and serves the timeline over HTTP.
Without a subcommand it runs the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $CONFIG_PATH or "+defaultConfigPath+")")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(predictCmd)
}

// loadConfig reads the configured file. Only the implicit default path may
// be missing, in which case built-in defaults apply.
func loadConfig(logger *log.Logger) (*config.Config, error) {
	path, explicit := configPath, true
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path, explicit = defaultConfigPath, false
	}

	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		logger.Printf("no configuration at %s, using defaults", path)
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	logger.Printf("configuration loaded successfully from %s", path)
	return cfg, nil
}
