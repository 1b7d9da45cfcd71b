package duckdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/rankview/pkg/data"
	"github.com/tunogya/rankview/pkg/dataset"
	"github.com/tunogya/rankview/pkg/model"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, InitializeSchema(context.Background(), client))
	return client
}

func mustObs(t *testing.T, asin, date string, rank int) model.RankObservation {
	t.Helper()
	o, err := model.NewRankObservation(asin, date, rank)
	require.NoError(t, err)
	return o
}

func TestObservationRepoKeepsSourceOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewObservationRepo(newTestClient(t))

	obs := []model.RankObservation{
		mustObs(t, "Z9", "12/31/2019", 4),
		mustObs(t, "A1", "01/01/2020", 8),
		mustObs(t, "A1", "11/05/2019", 2),
	}
	require.NoError(t, repo.ReplaceDataset(ctx, model.DatasetFurniture, obs))

	got, err := repo.GetByDataset(ctx, model.DatasetFurniture)
	require.NoError(t, err)
	assert.Equal(t, obs, got)

	bounds, err := repo.DateBounds(ctx, model.DatasetFurniture)
	require.NoError(t, err)
	assert.Equal(t, "11/05/2019", bounds.Start.String())
	assert.Equal(t, "01/01/2020", bounds.End.String())

	// replacing drops the previous rows
	require.NoError(t, repo.ReplaceDataset(ctx, model.DatasetFurniture, obs[:1]))
	count, err := repo.Count(ctx, model.DatasetFurniture)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.DateBounds(ctx, model.DatasetBedroomFurniture)
	assert.Error(t, err)

	dup := append([]model.RankObservation{}, obs[0], obs[0])
	assert.ErrorIs(t, repo.ReplaceDataset(ctx, model.DatasetFurniture, dup), model.ErrDuplicateObservation)
	count, err = repo.Count(ctx, model.DatasetFurniture)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestImportAndProvider(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	src := data.NewMemoryProvider().
		AddObservations(model.DatasetFurniture,
			mustObs(t, "A1", "01/01/2020", 5),
			mustObs(t, "A1", "01/02/2020", 3),
			mustObs(t, "B1", "01/02/2020", 1),
		).
		AddProducts(model.Product{ASIN: "A1", Name: "A1-name"}, model.Product{ASIN: "B1", Name: "B1-name"})

	var done []data.LoadProgress
	err := Import(ctx, client, src, []model.DatasetID{model.DatasetFurniture}, func(p data.LoadProgress) {
		done = append(done, p)
	})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, 3, done[0].Observations)

	// re-import renames without duplicating
	src.AddProducts(model.Product{ASIN: "B1", Name: "Renamed"})
	require.NoError(t, Import(ctx, client, src, []model.DatasetID{model.DatasetFurniture}, nil))
	n, err := NewProductRepo(client).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	store, err := dataset.Load(ctx, NewProvider(client), []model.DatasetID{model.DatasetFurniture}, nil)
	require.NoError(t, err)

	obs, err := store.Observations(model.DatasetFurniture)
	require.NoError(t, err)
	assert.Len(t, obs, 3)
	name, _ := store.Catalog().Name("B1")
	assert.Equal(t, "Renamed", name)

	_, err = NewProvider(client).FetchObservations(ctx, model.DatasetBedroomFurniture)
	assert.ErrorIs(t, err, model.ErrUnknownDataset)
}
