package data

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/rankview/pkg/model"
)

const furnitureCSV = `ASIN,date,rank,name
B07A,11/29/2019,3,Oak Desk
B07B,11/29/2019,7,
B07A,11/30/2019,2,Oak Desk
B07B,11/30/2019,9,Pine Shelf
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadDatasetCSV(t *testing.T) {
	obs, products, err := ReadDatasetCSV(strings.NewReader(furnitureCSV))
	require.NoError(t, err)

	require.Len(t, obs, 4)
	assert.Equal(t, "B07A", obs[0].ASIN)
	assert.Equal(t, model.MustParseDate("11/29/2019"), obs[0].Date)
	assert.Equal(t, 3, obs[0].Rank)

	assert.Equal(t, []model.Product{
		{ASIN: "B07A", Name: "Oak Desk"},
		{ASIN: "B07B", Name: "Pine Shelf"},
	}, products)
}

func TestReadDatasetCSVRejectsBadRows(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"bad date", "ASIN,date,rank\nB07A,2019-11-29,3\n", model.ErrInvalidDate},
		{"zero rank", "ASIN,date,rank\nB07A,11/29/2019,0\n", model.ErrInvalidRank},
		{"non numeric rank", "ASIN,date,rank\nB07A,11/29/2019,x\n", model.ErrInvalidRank},
		{"duplicate", "ASIN,date,rank\nB07A,11/29/2019,3\nB07A,11/29/2019,4\n", model.ErrDuplicateObservation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadDatasetCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, _, err := ReadDatasetCSV(strings.NewReader("ASIN,rank\nB07A,3\n"))
	assert.ErrorContains(t, err, "missing date column")
}

func TestReadDatasetCSVStripsByteOrderMark(t *testing.T) {
	obs, products, err := ReadDatasetCSV(strings.NewReader("\ufeff" + furnitureCSV))
	require.NoError(t, err)
	assert.Len(t, obs, 4)
	assert.Equal(t, "B07A", obs[0].ASIN)
	assert.NotEmpty(t, products)
}

func TestCSVProvider(t *testing.T) {
	dir := t.TempDir()
	furniture := writeFile(t, dir, "furniture.csv", furnitureCSV)
	productsFile := writeFile(t, dir, "products.csv", "asin,name\nB07B,Pine Bookshelf\nB07C,Bed Frame\n")

	p := NewCSVProvider(map[model.DatasetID]string{model.DatasetFurniture: furniture}, productsFile)
	ctx := context.Background()

	obs, err := p.FetchObservations(ctx, model.DatasetFurniture)
	require.NoError(t, err)
	assert.Len(t, obs, 4)

	// callers must not be able to mutate the cached dataset
	obs[0].Rank = 999
	again, err := p.FetchObservations(ctx, model.DatasetFurniture)
	require.NoError(t, err)
	assert.Equal(t, 3, again[0].Rank)

	products, err := p.FetchProducts(ctx)
	require.NoError(t, err)
	catalog := model.NewCatalog(products...)
	name, _ := catalog.Name("B07B")
	assert.Equal(t, "Pine Bookshelf", name)
	name, _ = catalog.Name("B07C")
	assert.Equal(t, "Bed Frame", name)
	assert.Equal(t, 3, catalog.Len())

	_, err = p.FetchObservations(ctx, model.DatasetBedroomFurniture)
	assert.ErrorIs(t, err, model.ErrUnknownDataset)
}

func TestMemoryProvider(t *testing.T) {
	o, err := model.NewRankObservation("A1", "01/01/2020", 5)
	require.NoError(t, err)

	p := NewMemoryProvider().
		AddObservations(model.DatasetFurniture, o).
		AddProducts(model.Product{ASIN: "A1", Name: "A1-name"})

	obs, err := p.FetchObservations(context.Background(), model.DatasetFurniture)
	require.NoError(t, err)
	assert.Equal(t, []model.RankObservation{o}, obs)

	_, err = p.FetchObservations(context.Background(), model.DatasetBedroomFurniture)
	assert.ErrorIs(t, err, model.ErrUnknownDataset)

	products, err := p.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}
