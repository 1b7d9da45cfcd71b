package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tunogya/rankview/pkg/filter"
	"github.com/tunogya/rankview/pkg/model"
	"github.com/tunogya/rankview/pkg/store/duckdb"
)

type rangeOutput struct {
	DatasetID    model.DatasetID `json:"dataset_id"`
	Observations int             `json:"observations"`
	MinMax       model.DateRange `json:"min_max"`
}

func newRangeCmd() *cobra.Command {
	var (
		src     sourceFlags
		dataset string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "range",
		Short: "Show the earliest and latest observation date of each dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := cfg.DatasetIDs()
			if dataset != "" {
				id, err := model.ParseDatasetID(dataset)
				if err != nil {
					return err
				}
				ids = []model.DatasetID{id}
			}

			var (
				out []rangeOutput
				err error
			)
			if src.source == sourceDuckDB {
				out, err = rangesFromDuckDB(cmd.Context(), src.dbPath(), ids)
			} else {
				out, err = rangesFromStore(cmd.Context(), &src, ids)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			for _, o := range out {
				fmt.Fprintf(w, "%-32s %6d observations  %s\n", o.DatasetID, o.Observations, o.MinMax)
			}
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "Only show this dataset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

// rangesFromStore loads the datasets into memory and scans them
func rangesFromStore(ctx context.Context, src *sourceFlags, ids []model.DatasetID) ([]rangeOutput, error) {
	store, err := src.loadStore(ctx)
	if err != nil {
		return nil, err
	}

	var out []rangeOutput
	for _, id := range ids {
		if !store.Has(id) {
			return nil, fmt.Errorf("%w %q: not configured", model.ErrUnknownDataset, id)
		}
		obs, err := store.Observations(id)
		if err != nil {
			return nil, err
		}
		r, err := filter.DiscoverDatasetRange(id, obs)
		if err != nil {
			return nil, err
		}
		out = append(out, rangeOutput{DatasetID: id, Observations: store.Len(id), MinMax: r})
	}
	return out, nil
}

// rangesFromDuckDB answers from aggregate queries without reading the rows
func rangesFromDuckDB(ctx context.Context, path string, ids []model.DatasetID) ([]rangeOutput, error) {
	client, err := duckdb.NewClient(path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DuckDB: %w", err)
	}
	defer client.Close()

	repo := duckdb.NewObservationRepo(client)
	var out []rangeOutput
	for _, id := range ids {
		count, err := repo.Count(ctx, id)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("dataset %s in %s: %w", id, client.Path(), filter.ErrEmptyDataset)
		}
		r, err := repo.DateBounds(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, rangeOutput{DatasetID: id, Observations: int(count), MinMax: r})
	}
	return out, nil
}
