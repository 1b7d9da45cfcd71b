package selection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tunogya/rankview/pkg/dataset"
	"github.com/tunogya/rankview/pkg/filter"
	"github.com/tunogya/rankview/pkg/model"
)

func mustObs(t *testing.T, asin, date string, rank int) model.RankObservation {
	t.Helper()
	o, err := model.NewRankObservation(asin, date, rank)
	require.NoError(t, err)
	return o
}

func dateRange(start, end string) model.DateRange {
	return model.NewDateRange(model.MustParseDate(start), model.MustParseDate(end))
}

func newTestStore(t *testing.T) *dataset.Store {
	t.Helper()
	store, err := dataset.NewStore(map[model.DatasetID][]model.RankObservation{
		model.DatasetFurniture: {
			mustObs(t, "F1", "11/20/2019", 120),
			mustObs(t, "F1", "11/25/2019", 80),
			mustObs(t, "F2", "11/25/2019", 40),
			mustObs(t, "F1", "11/30/2019", 60),
			mustObs(t, "F2", "11/30/2019", 30),
		},
		model.DatasetBedroomFurniture: {
			mustObs(t, "B1", "12/15/2019", 10),
			mustObs(t, "B1", "11/28/2019", 75),
			mustObs(t, "B1", "01/10/2020", 5),
		},
	}, model.NewCatalog(
		model.Product{ASIN: "F1", Name: "Oak Desk"},
		model.Product{ASIN: "F2", Name: "Pine Shelf"},
		model.Product{ASIN: "B1", Name: "Bed Frame"},
	))
	require.NoError(t, err)
	return store
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	c, err := New(newTestStore(t), model.DefaultSelection(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestNewComputesInitialState(t *testing.T) {
	c := newTestController(t)

	assert.Equal(t, model.DefaultSelection(), c.Selection())
	assert.Equal(t, dateRange("11/20/2019", "11/30/2019"), c.MinMaxRange())

	// default window 11/24..11/30, max rank 100
	assert.Len(t, c.Filtered(model.DatasetFurniture), 4)
	assert.Equal(t, []model.RankObservation{mustObs(t, "B1", "11/28/2019", 75)}, c.Filtered(model.DatasetBedroomFurniture))
}

func TestNewRejectsUnknownOrEmptyDataset(t *testing.T) {
	store := newTestStore(t)

	sel := model.DefaultSelection()
	sel.DatasetID = model.DatasetMattressesAndBoxSprings
	_, err := New(store, sel, nil)
	assert.ErrorIs(t, err, model.ErrUnknownDataset)

	empty, err := dataset.NewStore(map[model.DatasetID][]model.RankObservation{model.DatasetFurniture: {}}, nil)
	require.NoError(t, err)
	_, err = New(empty, model.DefaultSelection(), nil)
	assert.ErrorIs(t, err, filter.ErrEmptyDataset)
}

func TestSelectDatasetKeepsRangeAndRank(t *testing.T) {
	c := newTestController(t)
	c.SelectMaxRank(50)
	before := c.Selection()

	require.NoError(t, c.SelectDataset(model.DatasetBedroomFurniture))

	after := c.Selection()
	assert.Equal(t, model.DatasetBedroomFurniture, after.DatasetID)
	assert.Equal(t, dateRange("11/28/2019", "01/10/2020"), c.MinMaxRange())

	// known quirk: the old range is kept even though it starts before the
	// new dataset's first date, and nothing is clamped
	assert.Equal(t, before.DateRange, after.DateRange)
	assert.Equal(t, 50, after.MaxRank)
	assert.True(t, after.DateRange.Start.Before(c.MinMaxRange().Start))
}

func TestSelectDatasetUnknownLeavesStateUntouched(t *testing.T) {
	c := newTestController(t)
	before := c.Snapshot()

	err := c.SelectDataset(model.DatasetMattressesAndBoxSprings)
	assert.ErrorIs(t, err, model.ErrUnknownDataset)
	assert.Equal(t, before, c.Snapshot())
}

func TestSelectDateRangeRefiltersAllDatasets(t *testing.T) {
	c := newTestController(t)

	c.SelectDateRange(dateRange("12/01/2019", "01/31/2020"))

	assert.Empty(t, c.Filtered(model.DatasetFurniture))
	assert.Len(t, c.Filtered(model.DatasetBedroomFurniture), 2)
	assert.Equal(t, 100, c.Selection().MaxRank)
}

func TestSelectMaxRankShrinksResult(t *testing.T) {
	c := newTestController(t)
	c.SelectDateRange(dateRange("11/01/2019", "01/31/2020"))

	c.SelectMaxRank(100)
	at100 := c.Filtered(model.DatasetFurniture)
	c.SelectMaxRank(50)
	at50 := c.Filtered(model.DatasetFurniture)

	assert.Len(t, at100, 4)
	assert.Len(t, at50, 2)
	for _, o := range at50 {
		assert.LessOrEqual(t, o.Rank, 50)
		assert.Contains(t, at100, o)
	}
	// 75 on 11/28 is over the threshold
	assert.Len(t, c.Filtered(model.DatasetBedroomFurniture), 2)
}

func TestMalformedSelectionPassesThrough(t *testing.T) {
	c := newTestController(t)

	c.SelectDateRange(dateRange("12/31/2019", "11/01/2019"))
	assert.Empty(t, c.Filtered(model.DatasetFurniture))
	assert.Empty(t, c.Chart().Series)

	c.SelectDateRange(dateRange("11/01/2019", "12/31/2019"))
	c.SelectMaxRank(-5)
	assert.Empty(t, c.Snapshot().Observations)
	assert.Equal(t, -5, c.Selection().MaxRank)
}

func TestChartUsesActiveDataset(t *testing.T) {
	c := newTestController(t)

	chart := c.Chart()
	require.Len(t, chart.Series, 2)
	assert.Equal(t, "Oak Desk", chart.Series[0].Label)
	assert.Len(t, chart.Dates, 2)

	require.NoError(t, c.SelectDataset(model.DatasetBedroomFurniture))
	chart = c.Chart()
	require.Len(t, chart.Series, 1)
	assert.Equal(t, "Bed Frame", chart.Series[0].Label)
}

func TestViewMatchesSelection(t *testing.T) {
	c := newTestController(t)
	c.SelectMaxRank(50)

	view := c.View()
	assert.Equal(t, c.Selection(), view.Selection)
	assert.Equal(t, c.MinMaxRange(), view.MinMaxRange)
	assert.Equal(t, c.Chart(), view.Chart)
}

func TestSnapshotIsACopy(t *testing.T) {
	c := newTestController(t)

	snap := c.Snapshot()
	require.NotEmpty(t, snap.Observations)
	snap.Observations[0].Rank = 9999

	assert.NotEqual(t, 9999, c.Snapshot().Observations[0].Rank)
}

func TestConcurrentActions(t *testing.T) {
	c := newTestController(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(rank int) {
			defer wg.Done()
			c.SelectMaxRank(rank)
		}(i * 10)
		go func() {
			defer wg.Done()
			view := c.View()
			for _, s := range view.Chart.Series {
				for _, p := range s.Points {
					if p != nil {
						assert.LessOrEqual(t, *p, view.Selection.MaxRank)
					}
				}
			}
			_ = c.Snapshot()
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	for _, o := range snap.Observations {
		assert.LessOrEqual(t, o.Rank, snap.Selection.MaxRank)
	}
}
