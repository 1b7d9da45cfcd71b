package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tunogya/rankview/pkg/queue/nats"
	"github.com/tunogya/rankview/pkg/selection"
)

func newChartCmd() *cobra.Command {
	var (
		src    sourceFlags
		sel    selectionFlags
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print the chart payload and series summaries for a selection",
		Long: `Print the chart payload for the selected dataset, date range and rank
threshold as JSON. Dates on the axis are ISO-8601; missing points are null.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := cfg.DefaultSelection()
			if err != nil {
				return err
			}
			selected, err := sel.resolve(cmd, base)
			if err != nil {
				return err
			}

			store, err := src.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			controller, err := selection.New(store, selected, logger)
			if err != nil {
				return fmt.Errorf("failed to select %s: %w", selected.DatasetID, err)
			}

			snap := nats.NewSnapshotMsg(controller)
			logger.Debug("Chart built",
				zap.String("dataset", snap.Selection.DatasetID.String()),
				zap.Int("dates", len(snap.Chart.Labels)),
				zap.Int("series", len(snap.Chart.Series)),
			)

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(snap)
		},
	}

	src.register(cmd)
	sel.register(cmd)
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent JSON output")
	return cmd
}
