package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tunogya/rankview/pkg/queue/nats"
	"github.com/tunogya/rankview/pkg/selection"
)

func newServeCmd() *cobra.Command {
	var (
		src      sourceFlags
		sel      selectionFlags
		natsURL  string
		consumer string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Apply selection actions from NATS and publish chart snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			base, err := cfg.DefaultSelection()
			if err != nil {
				return err
			}
			initial, err := sel.resolve(cmd, base)
			if err != nil {
				return err
			}

			store, err := src.loadStore(ctx)
			if err != nil {
				return err
			}
			controller, err := selection.New(store, initial, logger.Named("selection"))
			if err != nil {
				return fmt.Errorf("failed to select %s: %w", initial.DatasetID, err)
			}

			natsCfg := cfg.NATSClientConfig()
			if natsURL != "" {
				natsCfg.URL = natsURL
			}
			if consumer == "" {
				consumer = cfg.NATS.Consumer
			}

			logger.Info("Connecting to NATS", zap.String("url", natsCfg.URL), zap.String("stream", natsCfg.StreamName))
			client, err := nats.NewClient(natsCfg, logger.Named("nats"))
			if err != nil {
				return err
			}
			defer client.Close()

			subjects := []string{nats.SubjectActions, nats.SubjectChartSnapshot}
			if err := client.CreateStream(ctx, subjects); err != nil {
				return err
			}

			dispatcher := nats.NewDispatcher(controller, client, logger.Named("dispatch"))
			if err := dispatcher.PublishSnapshot(ctx); err != nil {
				return err
			}

			consumeCtx, err := client.Subscribe(ctx, nats.SubjectActions, consumer, dispatcher.Handler(ctx))
			if err != nil {
				return err
			}
			defer consumeCtx.Stop()

			logger.Info("Serving selection actions",
				zap.String("subject", nats.SubjectActions),
				zap.String("consumer", consumer),
				zap.String("dataset", initial.DatasetID.String()),
			)

			<-ctx.Done()
			logger.Info("Shutting down")
			return nil
		},
	}

	src.register(cmd)
	sel.register(cmd)
	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS server URL (default from config)")
	cmd.Flags().StringVar(&consumer, "consumer", "", "Durable consumer name (default from config)")
	return cmd
}
