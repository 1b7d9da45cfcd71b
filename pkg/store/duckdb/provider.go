package duckdb

import (
	"context"
	"fmt"

	"github.com/tunogya/rankview/pkg/data"
	"github.com/tunogya/rankview/pkg/model"
)

var _ data.Provider = (*Provider)(nil)

// Provider serves datasets and product names previously imported into DuckDB
type Provider struct {
	observations *ObservationRepo
	products     *ProductRepo
}

// NewProvider creates a data.Provider backed by the given client
func NewProvider(client *Client) *Provider {
	return &Provider{
		observations: NewObservationRepo(client),
		products:     NewProductRepo(client),
	}
}

// FetchObservations returns the stored dataset in source order. A dataset
// that was never imported is reported as unknown.
func (p *Provider) FetchObservations(ctx context.Context, id model.DatasetID) ([]model.RankObservation, error) {
	count, err := p.observations.Count(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count dataset %s: %w", id, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w %q: not imported", model.ErrUnknownDataset, id)
	}
	return p.observations.GetByDataset(ctx, id)
}

// FetchProducts returns every stored product
func (p *Provider) FetchProducts(ctx context.Context) ([]model.Product, error) {
	return p.products.GetAll(ctx)
}

// Import copies every dataset and product from src into the database and
// reports progress per dataset
func Import(ctx context.Context, client *Client, src data.Provider, ids []model.DatasetID, progress data.ProgressCallback) error {
	observations := NewObservationRepo(client)
	products := NewProductRepo(client)

	for i, id := range ids {
		obs, err := src.FetchObservations(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to read dataset %s: %w", id, err)
		}
		if err := observations.ReplaceDataset(ctx, id, obs); err != nil {
			return err
		}
		if progress != nil {
			progress(data.LoadProgress{DatasetID: id, Observations: len(obs), Done: i + 1, Total: len(ids)})
		}
	}

	prods, err := src.FetchProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to read products: %w", err)
	}
	return products.UpsertBatch(ctx, prods)
}
