package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/rankview/pkg/model"
	"github.com/tunogya/rankview/pkg/queue/nats"
)

const testFurnitureCSV = `ASIN,date,rank,name
F1,11/25/2019,80,Oak Desk
F1,11/26/2019,60,Oak Desk
F2,11/26/2019,150,Pine Shelf
F3,11/26/2019,5,
`

const testBedroomCSV = `ASIN,date,rank,name
B1,12/01/2019,10,Bed Frame
B1,01/02/2020,4,Bed Frame
`

const testProductsCSV = `ASIN,name
F3,Walnut Stool
`

// writeTestConfig lays out two datasets, a products file and a config file in
// a temp dir and returns the config path
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	furniture := write("furniture.csv", testFurnitureCSV)
	bedroom := write("bedroom.csv", testBedroomCSV)
	products := write("products.csv", testProductsCSV)

	return write("rankview.yaml", fmt.Sprintf(`
datasets:
  bsr-furniture: %s
  bsr-bedroom-furniture: %s
products: %s
duckdb:
  path: %s
`, furniture, bedroom, products, filepath.Join(dir, "rankview.duckdb")))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestChartCommand(t *testing.T) {
	configFile := writeTestConfig(t)

	out, err := execute(t, "chart", "--config", configFile, "--max-rank", "100")
	require.NoError(t, err)

	var snap nats.SnapshotMsg
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, model.DefaultSelection(), snap.Selection)
	assert.Equal(t, "11/25/2019 to 11/26/2019", snap.MinMax.String())
	assert.Equal(t, []string{"2019-11-25T00:00:00.000Z", "2019-11-26T00:00:00.000Z"}, snap.Chart.Labels)

	require.Len(t, snap.Chart.Series, 2)
	assert.Equal(t, "Oak Desk", snap.Chart.Series[0].Label)
	assert.Equal(t, "Walnut Stool", snap.Chart.Series[1].Label)
	assert.Nil(t, snap.Chart.Series[1].Data[0])
	require.NotNil(t, snap.Chart.Series[1].Data[1])
	assert.Equal(t, 5, *snap.Chart.Series[1].Data[1])
}

func TestChartCommandOverrides(t *testing.T) {
	configFile := writeTestConfig(t)

	out, err := execute(t, "chart", "--config", configFile,
		"--dataset", "bsr-bedroom-furniture", "--from", "12/01/2019", "--to", "01/31/2020", "--max-rank", "5")
	require.NoError(t, err)

	var snap nats.SnapshotMsg
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, model.DatasetBedroomFurniture, snap.Selection.DatasetID)
	assert.Equal(t, []string{"2020-01-02T00:00:00.000Z"}, snap.Chart.Labels)
	require.Len(t, snap.Summaries, 1)
	assert.Equal(t, 4, snap.Summaries[0].Best)
}

func TestChartCommandRejectsBadSelection(t *testing.T) {
	configFile := writeTestConfig(t)

	tests := [][]string{
		{"--from", "12/31/2019", "--to", "12/01/2019"},
		{"--max-rank", "0"},
		{"--from", "2019-12-01"},
		{"--dataset", "bsr-toys"},
		{"--source", "parquet"},
	}
	for _, args := range tests {
		_, err := execute(t, append([]string{"chart", "--config", configFile}, args...)...)
		assert.Error(t, err, "%v", args)
	}
}

func TestRangeCommand(t *testing.T) {
	configFile := writeTestConfig(t)

	out, err := execute(t, "range", "--config", configFile, "--json")
	require.NoError(t, err)

	var ranges []rangeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &ranges))
	require.Len(t, ranges, 2)
	assert.Equal(t, model.DatasetFurniture, ranges[0].DatasetID)
	assert.Equal(t, 4, ranges[0].Observations)
	assert.Equal(t, "12/01/2019 to 01/02/2020", ranges[1].MinMax.String())

	out, err = execute(t, "range", "--config", configFile, "--dataset", "bsr-bedroom-furniture")
	require.NoError(t, err)
	assert.Contains(t, out, "bsr-bedroom-furniture")
	assert.NotContains(t, out, "bsr-furniture ")

	_, err = execute(t, "range", "--config", configFile, "--dataset", "bsr-mattresses-and-box-springs")
	assert.ErrorIs(t, err, model.ErrUnknownDataset)
}

func TestRangeCommandFromDuckDB(t *testing.T) {
	configFile := writeTestConfig(t)

	_, err := execute(t, "import", "--config", configFile)
	require.NoError(t, err)

	fromCSV, err := execute(t, "range", "--config", configFile, "--json")
	require.NoError(t, err)
	fromDB, err := execute(t, "range", "--config", configFile, "--json", "--source", "duckdb")
	require.NoError(t, err)
	assert.JSONEq(t, fromCSV, fromDB)

	// never imported
	_, err = execute(t, "range", "--config", configFile, "--source", "duckdb", "--dataset", "bsr-mattresses-and-box-springs")
	assert.Error(t, err)
}

func TestImportThenChartFromDuckDB(t *testing.T) {
	configFile := writeTestConfig(t)

	out, err := execute(t, "import", "--config", configFile)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 datasets and 4 products")

	fromCSV, err := execute(t, "chart", "--config", configFile, "--max-rank", "200")
	require.NoError(t, err)
	fromDB, err := execute(t, "chart", "--config", configFile, "--max-rank", "200", "--source", "duckdb")
	require.NoError(t, err)
	assert.JSONEq(t, fromCSV, fromDB)
}
