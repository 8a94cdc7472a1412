package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dspboard/driverrank/internal/config"
	"github.com/dspboard/driverrank/pkg/logger"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "rankctl",
		Short: "Rank DSP driver cohorts offline",
		Long: `Ranks the drivers of a DSP station for one performance week from a JSON
export of the weekly scorecard, without running the HTTP service.

Examples:
  # Generate a cohort and rank it
  rankctl sample --drivers 30 --seed 7 | rankctl rank --file - --pretty

  # Rank several cohorts at once
  rankctl batch --file cohorts.json --concurrency 4`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := logger.Init(); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger.SetOutput(cmd.ErrOrStderr())
			if err := logger.SetFormat(cfg.LogFormat); err != nil {
				return err
			}
			level := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = logLevel
			}
			return logger.SetLevelString(level)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newRankCmd(), newBatchCmd(), newSampleCmd())
	return root
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
