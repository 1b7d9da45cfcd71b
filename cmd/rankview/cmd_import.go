package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tunogya/rankview/pkg/data"
	"github.com/tunogya/rankview/pkg/store/duckdb"
)

func newImportCmd() *cobra.Command {
	var (
		duckdbPath string
		reset      bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the configured CSV datasets into DuckDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if duckdbPath == "" {
				duckdbPath = cfg.DuckDB.Path
			}

			logger.Info("Starting import",
				zap.String("duckdb", duckdbPath),
				zap.Int("datasets", len(cfg.Datasets)),
			)
			start := time.Now()

			client, err := duckdb.NewClient(duckdbPath)
			if err != nil {
				return fmt.Errorf("failed to connect to DuckDB: %w", err)
			}
			defer client.Close()

			if reset {
				if err := duckdb.DropAllTables(ctx, client); err != nil {
					return err
				}
				logger.Info("Dropped existing tables")
			}
			if err := duckdb.InitializeSchema(ctx, client); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			provider := data.NewCSVProvider(cfg.DatasetPaths(), cfg.Products)
			err = duckdb.Import(ctx, client, provider, cfg.DatasetIDs(), func(p data.LoadProgress) {
				logger.Info("Dataset imported",
					zap.String("dataset", p.DatasetID.String()),
					zap.Int("observations", p.Observations),
					zap.Int("done", p.Done),
					zap.Int("total", p.Total),
				)
			})
			if err != nil {
				return err
			}

			products, err := duckdb.NewProductRepo(client).Count(ctx)
			if err != nil {
				return err
			}
			logger.Info("Import completed",
				zap.Int64("products", products),
				zap.Duration("elapsed", time.Since(start)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d datasets and %d products into %s\n",
				len(cfg.DatasetIDs()), products, client.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&duckdbPath, "duckdb", "", "DuckDB file path (default from config)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Drop existing tables before importing")
	return cmd
}
