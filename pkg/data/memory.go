package data

import (
	"context"
	"fmt"

	"github.com/tunogya/rankview/pkg/model"
)

// MemoryProvider implements Provider with in-memory storage
type MemoryProvider struct {
	datasets map[model.DatasetID][]model.RankObservation
	products []model.Product
}

// NewMemoryProvider creates a new in-memory dataset provider
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		datasets: make(map[model.DatasetID][]model.RankObservation),
	}
}

// AddObservations appends observations to a dataset
func (p *MemoryProvider) AddObservations(id model.DatasetID, obs ...model.RankObservation) *MemoryProvider {
	p.datasets[id] = append(p.datasets[id], obs...)
	return p
}

// AddProducts registers product display names
func (p *MemoryProvider) AddProducts(products ...model.Product) *MemoryProvider {
	p.products = append(p.products, products...)
	return p
}

// FetchObservations returns a copy of the dataset's observations
func (p *MemoryProvider) FetchObservations(ctx context.Context, id model.DatasetID) ([]model.RankObservation, error) {
	obs, ok := p.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", model.ErrUnknownDataset, id)
	}
	result := make([]model.RankObservation, len(obs))
	copy(result, obs)
	return result, nil
}

// FetchProducts returns a copy of the registered products
func (p *MemoryProvider) FetchProducts(ctx context.Context) ([]model.Product, error) {
	result := make([]model.Product, len(p.products))
	copy(result, p.products)
	return result, nil
}
