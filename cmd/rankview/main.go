// Package main implements the rankview CLI: dataset import, range discovery,
// chart rendering and the NATS-driven selection service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tunogya/rankview/pkg/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rankview",
		Short: "Best-seller rank explorer for furniture categories",
		Long: `rankview loads daily best-seller rank observations for a fixed set of
product categories, filters them by date range and rank threshold, and turns
them into per-product series ready for charting.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zapCfg := zap.NewProductionConfig()
			if verbose {
				zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zapCfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file path")

	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newRangeCmd())
	rootCmd.AddCommand(newChartCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
