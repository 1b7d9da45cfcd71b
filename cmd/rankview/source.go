package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tunogya/rankview/pkg/data"
	"github.com/tunogya/rankview/pkg/dataset"
	"github.com/tunogya/rankview/pkg/model"
	"github.com/tunogya/rankview/pkg/store/duckdb"
)

// Dataset sources accepted by --source
const (
	sourceCSV    = "csv"
	sourceDuckDB = "duckdb"
)

// sourceFlags selects where datasets are loaded from
type sourceFlags struct {
	source     string
	duckdbPath string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", sourceCSV, "Dataset source: csv or duckdb")
	cmd.Flags().StringVar(&f.duckdbPath, "duckdb", "", "DuckDB file path (default from config)")
}

func (f *sourceFlags) dbPath() string {
	if f.duckdbPath != "" {
		return f.duckdbPath
	}
	return cfg.DuckDB.Path
}

// loadStore reads every configured dataset into memory
func (f *sourceFlags) loadStore(ctx context.Context) (*dataset.Store, error) {
	ids := cfg.DatasetIDs()
	progress := func(p data.LoadProgress) {
		logger.Info("Dataset loaded",
			zap.String("dataset", p.DatasetID.String()),
			zap.Int("observations", p.Observations),
			zap.Int("done", p.Done),
			zap.Int("total", p.Total),
		)
	}

	switch f.source {
	case sourceCSV:
		provider := data.NewCSVProvider(cfg.DatasetPaths(), cfg.Products)
		return dataset.Load(ctx, provider, ids, progress)

	case sourceDuckDB:
		client, err := duckdb.NewClient(f.dbPath())
		if err != nil {
			return nil, err
		}
		defer client.Close()
		return dataset.Load(ctx, duckdb.NewProvider(client), ids, progress)

	default:
		return nil, fmt.Errorf("unknown source %q (want %s or %s)", f.source, sourceCSV, sourceDuckDB)
	}
}

// selectionFlags overrides the configured default selection
type selectionFlags struct {
	dataset string
	from    string
	to      string
	maxRank int
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dataset, "dataset", "d", "", "Dataset id (default from config)")
	cmd.Flags().StringVar(&f.from, "from", "", "Range start, MM/DD/YYYY")
	cmd.Flags().StringVar(&f.to, "to", "", "Range end, MM/DD/YYYY")
	cmd.Flags().IntVar(&f.maxRank, "max-rank", 0, "Highest rank to include (default from config)")
}

// resolve applies the flags over base and validates the result
func (f *selectionFlags) resolve(cmd *cobra.Command, base model.Selection) (model.Selection, error) {
	sel := base

	if f.dataset != "" {
		id, err := model.ParseDatasetID(f.dataset)
		if err != nil {
			return model.Selection{}, err
		}
		sel.DatasetID = id
	}
	if f.from != "" {
		start, err := model.ParseDate(f.from)
		if err != nil {
			return model.Selection{}, fmt.Errorf("--from: %w", err)
		}
		sel.DateRange.Start = start
	}
	if f.to != "" {
		end, err := model.ParseDate(f.to)
		if err != nil {
			return model.Selection{}, fmt.Errorf("--to: %w", err)
		}
		sel.DateRange.End = end
	}
	if cmd.Flags().Changed("max-rank") {
		sel.MaxRank = f.maxRank
	}

	if err := sel.Validate(); err != nil {
		return model.Selection{}, err
	}
	return sel, nil
}
