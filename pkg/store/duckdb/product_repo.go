package duckdb

import (
	"context"
	"fmt"

	"github.com/tunogya/rankview/pkg/model"
)

// ProductRepo handles product display name persistence
type ProductRepo struct {
	client *Client
}

// NewProductRepo creates a new product repository
func NewProductRepo(client *Client) *ProductRepo {
	return &ProductRepo{client: client}
}

// UpsertBatch inserts or renames products in a transaction. When an ASIN
// appears more than once the last name wins.
func (r *ProductRepo) UpsertBatch(ctx context.Context, products []model.Product) error {
	products = lastByASIN(products)

	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (asin, name)
		VALUES (?, ?)
		ON CONFLICT (asin) DO UPDATE SET
			name = EXCLUDED.name
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx, p.ASIN, p.Name); err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", p.ASIN, err)
		}
	}

	return tx.Commit()
}

// GetAll retrieves every product ordered by ASIN
func (r *ProductRepo) GetAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.client.Query(ctx, "SELECT asin, name FROM products ORDER BY asin")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ASIN, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// Count returns the total number of products
func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	return count, err
}

func lastByASIN(products []model.Product) []model.Product {
	index := make(map[string]int, len(products))
	result := make([]model.Product, 0, len(products))
	for _, p := range products {
		if i, ok := index[p.ASIN]; ok {
			result[i] = p
			continue
		}
		index[p.ASIN] = len(result)
		result = append(result, p)
	}
	return result
}
