package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tunogya/rankview/pkg/model"
)

// Dataset CSV columns. Header names are matched case-insensitively.
const (
	ColumnASIN = "asin"
	ColumnDate = "date"
	ColumnRank = "rank"
	ColumnName = "name"
)

// CSVProvider implements Provider for one CSV file per dataset plus an
// optional products file (ASIN,name)
type CSVProvider struct {
	paths        map[model.DatasetID]string
	productsPath string

	datasets map[model.DatasetID][]model.RankObservation
	products map[string]model.Product
	order    []string
}

// NewCSVProvider creates a new CSV-based dataset provider
func NewCSVProvider(paths map[model.DatasetID]string, productsPath string) *CSVProvider {
	return &CSVProvider{
		paths:        paths,
		productsPath: productsPath,
		datasets:     make(map[model.DatasetID][]model.RankObservation),
		products:     make(map[string]model.Product),
	}
}

// FetchObservations reads the dataset file on first use and returns a copy of
// its observations
func (p *CSVProvider) FetchObservations(ctx context.Context, id model.DatasetID) ([]model.RankObservation, error) {
	if err := p.loadDatasetIfNeeded(id); err != nil {
		return nil, err
	}
	obs := p.datasets[id]
	result := make([]model.RankObservation, len(obs))
	copy(result, obs)
	return result, nil
}

// FetchProducts returns names found in the products file and in the name
// column of every configured dataset file. The products file wins on conflict.
func (p *CSVProvider) FetchProducts(ctx context.Context) ([]model.Product, error) {
	for id := range p.paths {
		if err := p.loadDatasetIfNeeded(id); err != nil {
			return nil, err
		}
	}
	if p.productsPath != "" {
		if err := p.loadProducts(); err != nil {
			return nil, err
		}
	}

	result := make([]model.Product, 0, len(p.order))
	for _, asin := range p.order {
		result = append(result, p.products[asin])
	}
	return result, nil
}

func (p *CSVProvider) loadDatasetIfNeeded(id model.DatasetID) error {
	if _, ok := p.datasets[id]; ok {
		return nil
	}

	path, ok := p.paths[id]
	if !ok {
		return fmt.Errorf("%w %q: no CSV file configured", model.ErrUnknownDataset, id)
	}

	obs, products, err := ReadDatasetCSVFile(path)
	if err != nil {
		return fmt.Errorf("dataset %s: %w", id, err)
	}

	p.datasets[id] = obs
	for _, prod := range products {
		if _, seen := p.products[prod.ASIN]; !seen {
			p.addProduct(prod)
		}
	}
	return nil
}

func (p *CSVProvider) loadProducts() error {
	file, err := os.Open(p.productsPath)
	if err != nil {
		return fmt.Errorf("failed to open products file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	colMap, err := readHeader(reader)
	if err != nil {
		return err
	}
	if _, ok := colMap[ColumnASIN]; !ok {
		return errors.New("products file: missing ASIN column")
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read products record: %w", err)
		}
		p.addProduct(model.Product{
			ASIN: field(record, colMap, ColumnASIN),
			Name: field(record, colMap, ColumnName),
		})
	}
	return nil
}

func (p *CSVProvider) addProduct(prod model.Product) {
	if prod.ASIN == "" || prod.Name == "" {
		return
	}
	if _, ok := p.products[prod.ASIN]; !ok {
		p.order = append(p.order, prod.ASIN)
	}
	p.products[prod.ASIN] = prod
}

// ReadDatasetCSVFile opens and parses a dataset file
func ReadDatasetCSVFile(path string) ([]model.RankObservation, []model.Product, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ReadDatasetCSV(file)
}

// ReadDatasetCSV parses ASIN,date,rank[,name] rows. Any malformed row fails
// the whole read.
func ReadDatasetCSV(r io.Reader) ([]model.RankObservation, []model.Product, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	colMap, err := readHeader(reader)
	if err != nil {
		return nil, nil, err
	}
	for _, col := range []string{ColumnASIN, ColumnDate, ColumnRank} {
		if _, ok := colMap[col]; !ok {
			return nil, nil, fmt.Errorf("missing %s column", col)
		}
	}

	var observations []model.RankObservation
	var products []model.Product
	named := make(map[string]bool)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		o, err := parseRecord(record, colMap)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		observations = append(observations, o)

		if name := field(record, colMap, ColumnName); name != "" && !named[o.ASIN] {
			named[o.ASIN] = true
			products = append(products, model.Product{ASIN: o.ASIN, Name: name})
		}
	}

	if err := model.CheckObservations(observations); err != nil {
		return nil, nil, err
	}
	return observations, products, nil
}

// parseRecord parses a CSV record into a RankObservation
func parseRecord(record []string, colMap map[string]int) (model.RankObservation, error) {
	rank, err := strconv.Atoi(field(record, colMap, ColumnRank))
	if err != nil {
		return model.RankObservation{}, fmt.Errorf("%w: %v", model.ErrInvalidRank, err)
	}
	return model.NewRankObservation(field(record, colMap, ColumnASIN), field(record, colMap, ColumnDate), rank)
}

func readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// spreadsheet exports often start with a byte order mark
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return colMap, nil
}

func field(record []string, colMap map[string]int, name string) string {
	if idx, ok := colMap[name]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
