package duckdb

import (
	"context"
	"fmt"
)

// Schema contains table creation statements for all required tables

// CreateObservationsTable creates the rank observations fact table.
// seq keeps the source order of each dataset. (asin, obs_date) uniqueness
// is enforced by ObservationRepo.ReplaceDataset, not by an index.
const CreateObservationsTable = `
CREATE TABLE IF NOT EXISTS rank_observations (
    dataset_id VARCHAR NOT NULL,
    seq BIGINT NOT NULL,
    asin VARCHAR NOT NULL,
    obs_date DATE NOT NULL,
    sales_rank INTEGER NOT NULL CHECK (sales_rank >= 1)
);

CREATE INDEX IF NOT EXISTS idx_rank_observations_seq ON rank_observations(dataset_id, seq);
`

// CreateProductsTable creates the product display name table
const CreateProductsTable = `
CREATE TABLE IF NOT EXISTS products (
    asin VARCHAR PRIMARY KEY,
    name VARCHAR NOT NULL
);
`

// InitializeSchema creates all required tables
func InitializeSchema(ctx context.Context, c *Client) error {
	schemas := []string{
		CreateObservationsTable,
		CreateProductsTable,
	}

	for _, schema := range schemas {
		if err := c.Exec(ctx, schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with caution)
func DropAllTables(ctx context.Context, c *Client) error {
	tables := []string{"products", "rank_observations"}
	for _, table := range tables {
		if err := c.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
