// Package config loads the rankview YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tunogya/rankview/pkg/model"
	"github.com/tunogya/rankview/pkg/queue/nats"
)

// DefaultPath is where the CLI looks for a config file when none is given
const DefaultPath = "rankview.yaml"

var ErrInvalidConfig = errors.New("invalid config")

// Config is the full rankview configuration
type Config struct {
	Datasets map[string]string `yaml:"datasets"` // dataset id -> csv path
	Products string            `yaml:"products"`
	DuckDB   DuckDBConfig      `yaml:"duckdb"`
	NATS     NATSConfig        `yaml:"nats"`
	Defaults DefaultsConfig    `yaml:"defaults"`
}

// DuckDBConfig points at the database file. An empty path is in-memory.
type DuckDBConfig struct {
	Path string `yaml:"path"`
}

// NATSConfig configures the JetStream bridge
type NATSConfig struct {
	URL           string        `yaml:"url"`
	Stream        string        `yaml:"stream"`
	Consumer      string        `yaml:"consumer"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

// DefaultsConfig is the initial selection
type DefaultsConfig struct {
	Dataset string `yaml:"dataset"`
	EndDate string `yaml:"end_date"`
	Days    int    `yaml:"days"`
	MaxRank int    `yaml:"max_rank"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	natsCfg := nats.DefaultConfig()
	return &Config{
		Datasets: map[string]string{
			string(model.DatasetFurniture):               "data/bsr-furniture.csv",
			string(model.DatasetBedroomFurniture):        "data/bsr-bedroom-furniture.csv",
			string(model.DatasetMattressesAndBoxSprings): "data/bsr-mattresses-and-box-springs.csv",
		},
		DuckDB: DuckDBConfig{Path: "data/rankview.duckdb"},
		NATS: NATSConfig{
			URL:           natsCfg.URL,
			Stream:        natsCfg.StreamName,
			Consumer:      "rankview-serve",
			RetryAttempts: natsCfg.RetryAttempts,
			RetryDelay:    natsCfg.RetryDelay,
		},
		Defaults: DefaultsConfig{
			Dataset: string(model.DatasetFurniture),
			EndDate: model.DefaultEndDate,
			Days:    model.DefaultRangeDays,
			MaxRank: model.DefaultMaxRank,
		},
	}
}

// Load reads path over the defaults. A missing file at DefaultPath is not an
// error; any other missing file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// a datasets section replaces the default list instead of merging into it
	defaults := cfg.Datasets
	cfg.Datasets = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Datasets == nil {
		cfg.Datasets = defaults
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks dataset ids and the default selection
func (c *Config) Validate() error {
	if len(c.Datasets) == 0 {
		return fmt.Errorf("%w: no datasets configured", ErrInvalidConfig)
	}
	for id, path := range c.Datasets {
		if _, err := model.ParseDatasetID(id); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if path == "" {
			return fmt.Errorf("%w: dataset %s has no path", ErrInvalidConfig, id)
		}
	}
	if c.Defaults.Days < 1 {
		return fmt.Errorf("%w: defaults.days must be positive", ErrInvalidConfig)
	}
	sel, err := c.DefaultSelection()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, ok := c.DatasetPaths()[sel.DatasetID]; !ok {
		return fmt.Errorf("%w: default dataset %s is not in datasets", ErrInvalidConfig, sel.DatasetID)
	}
	return nil
}

// DatasetPaths returns the configured csv paths keyed by dataset id
func (c *Config) DatasetPaths() map[model.DatasetID]string {
	paths := make(map[model.DatasetID]string, len(c.Datasets))
	for id, path := range c.Datasets {
		parsed, err := model.ParseDatasetID(id)
		if err != nil {
			continue
		}
		paths[parsed] = path
	}
	return paths
}

// DatasetIDs returns the configured datasets in display order
func (c *Config) DatasetIDs() []model.DatasetID {
	paths := c.DatasetPaths()
	var ids []model.DatasetID
	for _, id := range model.DatasetIDs() {
		if _, ok := paths[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// DefaultSelection builds the initial selection from the defaults section
func (c *Config) DefaultSelection() (model.Selection, error) {
	id, err := model.ParseDatasetID(c.Defaults.Dataset)
	if err != nil {
		return model.Selection{}, err
	}
	end, err := model.ParseDate(c.Defaults.EndDate)
	if err != nil {
		return model.Selection{}, err
	}
	sel := model.Selection{
		DatasetID: id,
		DateRange: model.LastDays(end, c.Defaults.Days),
		MaxRank:   c.Defaults.MaxRank,
	}
	if err := sel.Validate(); err != nil {
		return model.Selection{}, err
	}
	return sel, nil
}

// NATSClientConfig converts the nats section into a client config
func (c *Config) NATSClientConfig() nats.Config {
	return nats.Config{
		URL:           c.NATS.URL,
		StreamName:    c.NATS.Stream,
		RetryAttempts: c.NATS.RetryAttempts,
		RetryDelay:    c.NATS.RetryDelay,
	}
}
