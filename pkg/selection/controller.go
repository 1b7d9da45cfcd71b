// Package selection owns the user's current dataset, date range and rank
// threshold, and the state derived from them.
package selection

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tunogya/rankview/pkg/dataset"
	"github.com/tunogya/rankview/pkg/filter"
	"github.com/tunogya/rankview/pkg/model"
	"github.com/tunogya/rankview/pkg/series"
)

// Snapshot is an immutable view of the controller state
type Snapshot struct {
	Selection    model.Selection         `json:"selection"`
	MinMaxRange  model.DateRange         `json:"min_max_range"`
	Observations []model.RankObservation `json:"observations"` // filtered, active dataset
}

// View is the selection, bounds and chart of the active dataset read under
// one lock
type View struct {
	Selection   model.Selection
	MinMaxRange model.DateRange
	Chart       series.Chart
}

// Controller holds the Selection and recomputes derived state synchronously on
// every action. Derived state is always rebuilt in full.
type Controller struct {
	store   *dataset.Store
	builder *series.Builder
	logger  *zap.Logger

	mu        sync.RWMutex
	selection model.Selection
	minMax    model.DateRange
	filtered  map[model.DatasetID][]model.RankObservation
}

// New creates a controller for the given store and initial selection. The
// initial dataset must be loaded and non-empty; the range and rank are taken
// as-is.
func New(store *dataset.Store, initial model.Selection, logger *zap.Logger) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		store:     store,
		builder:   series.NewBuilder(store.Catalog()),
		logger:    logger,
		selection: initial,
	}

	minMax, err := c.discover(initial.DatasetID)
	if err != nil {
		return nil, err
	}
	c.minMax = minMax
	c.refilter()

	return c, nil
}

// SelectDataset switches the active dataset and re-bounds the selectable
// range to that dataset's own dates. The date range and max rank carry over
// unchanged, even when they fall outside the new bounds.
func (c *Controller) SelectDataset(id model.DatasetID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	minMax, err := c.discover(id)
	if err != nil {
		return err
	}

	c.selection.DatasetID = id
	c.minMax = minMax

	c.logger.Debug("dataset selected",
		zap.String("dataset", id.String()),
		zap.Stringer("min_max", minMax),
	)
	return nil
}

// SelectDateRange sets the date range and refilters every dataset. The range
// is not validated: an inverted range simply matches nothing.
func (c *Controller) SelectDateRange(r model.DateRange) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection.DateRange = r
	c.refilter()

	c.logger.Debug("date range selected",
		zap.Stringer("range", r),
		zap.Int("observations", len(c.filtered[c.selection.DatasetID])),
	)
}

// SelectMaxRank sets the rank threshold and refilters every dataset
func (c *Controller) SelectMaxRank(maxRank int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection.MaxRank = maxRank
	c.refilter()

	c.logger.Debug("max rank selected",
		zap.Int("max_rank", maxRank),
		zap.Int("observations", len(c.filtered[c.selection.DatasetID])),
	)
}

// Selection returns the current selection
func (c *Controller) Selection() model.Selection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selection
}

// MinMaxRange returns the date bounds of the active dataset
func (c *Controller) MinMaxRange() model.DateRange {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.minMax
}

// Filtered returns a copy of a dataset's filtered observations
func (c *Controller) Filtered(id model.DatasetID) []model.RankObservation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.filtered[id])
}

// Snapshot returns the selection, bounds and filtered active dataset together
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Selection:    c.selection,
		MinMaxRange:  c.minMax,
		Observations: clone(c.filtered[c.selection.DatasetID]),
	}
}

// Chart builds the series of the active dataset's filtered observations
func (c *Controller) Chart() series.Chart {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.builder.Build(c.filtered[c.selection.DatasetID])
}

// View returns the selection, bounds and chart together so no action can
// land between them
func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return View{
		Selection:   c.selection,
		MinMaxRange: c.minMax,
		Chart:       c.builder.Build(c.filtered[c.selection.DatasetID]),
	}
}

// discover computes the date bounds over the unfiltered dataset
func (c *Controller) discover(id model.DatasetID) (model.DateRange, error) {
	obs, err := c.store.Observations(id)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("select dataset: %w", err)
	}
	return filter.DiscoverDatasetRange(id, obs)
}

// refilter rebuilds the filtered view of every loaded dataset
func (c *Controller) refilter() {
	filtered := make(map[model.DatasetID][]model.RankObservation, len(c.store.IDs()))
	for _, id := range c.store.IDs() {
		obs, err := c.store.Observations(id)
		if err != nil {
			// ids come from the store itself
			c.logger.Error("dataset vanished from store", zap.String("dataset", id.String()), zap.Error(err))
			continue
		}
		filtered[id] = filter.Range(obs, c.selection.DateRange, c.selection.MaxRank)
	}
	c.filtered = filtered
}

func clone(obs []model.RankObservation) []model.RankObservation {
	result := make([]model.RankObservation, len(obs))
	copy(result, obs)
	return result
}
