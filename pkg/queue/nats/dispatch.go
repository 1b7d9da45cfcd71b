package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/tunogya/rankview/pkg/selection"
)

// Publisher sends encoded messages to a subject
type Publisher interface {
	PublishJSON(ctx context.Context, subject string, v interface{}) error
}

// Dispatcher applies incoming actions to a controller and publishes the
// resulting chart snapshot
type Dispatcher struct {
	controller *selection.Controller
	publisher  Publisher
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher for the given controller
func NewDispatcher(controller *selection.Controller, publisher Publisher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		controller: controller,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle decodes one action, applies it and publishes a snapshot
func (d *Dispatcher) Handle(ctx context.Context, data []byte) error {
	action, err := DecodeAction(data)
	if err != nil {
		return err
	}
	if err := action.Apply(d.controller); err != nil {
		return err
	}

	d.logger.Debug("action applied",
		zap.String("type", string(action.Type)),
		zap.Stringer("selection_range", d.controller.Selection().DateRange),
	)
	return d.PublishSnapshot(ctx)
}

// PublishSnapshot publishes the controller's current chart state
func (d *Dispatcher) PublishSnapshot(ctx context.Context) error {
	snap := NewSnapshotMsg(d.controller)
	if err := d.publisher.PublishJSON(ctx, SubjectChartSnapshot, snap); err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	d.logger.Debug("snapshot published",
		zap.String("dataset", snap.Selection.DatasetID.String()),
		zap.Int("series", len(snap.Chart.Series)),
	)
	return nil
}

// Handler adapts the dispatcher to a JetStream consumer
func (d *Dispatcher) Handler(ctx context.Context) MessageHandler {
	return func(msg jetstream.Msg) error {
		return d.Handle(ctx, msg.Data())
	}
}
