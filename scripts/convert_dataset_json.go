// convert_dataset_json turns a JSON dataset export, an array of
// {"ASIN","date","rank","name"} objects, into the CSV layout rankview loads.
//
//	go run scripts/convert_dataset_json.go -input bsr-furniture.json -output data/bsr-furniture.csv
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/tunogya/rankview/pkg/data"
	"github.com/tunogya/rankview/pkg/model"
)

type record struct {
	ASIN string `json:"ASIN"`
	Date string `json:"date"`
	Rank int    `json:"rank"`
	Name string `json:"name"`
}

func main() {
	input := flag.String("input", "", "JSON dataset file")
	output := flag.String("output", "", "Output CSV file path (default: input with .csv extension)")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *input == "" {
		fmt.Println("Usage: convert_dataset_json -input <file.json> [-output <file.csv>]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *output == "" {
		ext := filepath.Ext(*input)
		*output = (*input)[:len(*input)-len(ext)] + ".csv"
	}

	raw, err := os.ReadFile(*input)
	if err != nil {
		logger.Fatal("Failed to read input", zap.Error(err))
	}

	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		logger.Fatal("Failed to parse JSON", zap.Error(err))
	}

	// validate before writing so a bad export never produces a partial file
	obs := make([]model.RankObservation, 0, len(records))
	for i, r := range records {
		o, err := model.NewRankObservation(r.ASIN, r.Date, r.Rank)
		if err != nil {
			logger.Fatal("Invalid record", zap.Int("index", i), zap.Error(err))
		}
		obs = append(obs, o)
	}
	if err := model.CheckObservations(obs); err != nil {
		logger.Fatal("Invalid dataset", zap.Error(err))
	}

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create output directory", zap.Error(err))
		}
	}

	file, err := os.Create(*output)
	if err != nil {
		logger.Fatal("Failed to create output file", zap.Error(err))
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Write([]string{data.ColumnASIN, data.ColumnDate, data.ColumnRank, data.ColumnName})
	for i, o := range obs {
		writer.Write([]string{o.ASIN, o.Date.String(), strconv.Itoa(o.Rank), records[i].Name})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		logger.Fatal("Failed to write CSV", zap.Error(err))
	}

	logger.Info("Dataset converted",
		zap.String("input", *input),
		zap.String("output", *output),
		zap.Int("observations", len(obs)),
	)
}
