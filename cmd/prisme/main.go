// Command prisme collects ETF history, analyses it and serves the results.
package main

import (
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"Prisme/internal/config"
	"Prisme/internal/logging"
)

// Global config, loaded before any subcommand runs.
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "prisme",
	Short:         "Descriptive analytics over ETF price history",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}
		if path == "" {
			path = "configs/config.yaml"
		}

		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logging.Setup(cfg.Logging.Level)

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		log.Debug().Str("config", path).Str("data_dir", cfg.Data.Dir).Msg("config loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: $CONFIG_PATH or configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(etlCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
}
