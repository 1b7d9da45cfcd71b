// Package dataset holds the static rank datasets in memory once loaded.
package dataset

import (
	"context"
	"fmt"

	"github.com/tunogya/rankview/pkg/data"
	"github.com/tunogya/rankview/pkg/model"
)

// Store is a read-only collection of rank datasets keyed by dataset id.
// Readers always receive copies so the loaded data never changes.
type Store struct {
	datasets map[model.DatasetID][]model.RankObservation
	ids      []model.DatasetID
	catalog  *model.Catalog
}

// NewStore validates and copies the given datasets
func NewStore(datasets map[model.DatasetID][]model.RankObservation, catalog *model.Catalog) (*Store, error) {
	for id := range datasets {
		if !id.Valid() {
			return nil, fmt.Errorf("%w %q", model.ErrUnknownDataset, id)
		}
	}

	s := &Store{
		datasets: make(map[model.DatasetID][]model.RankObservation, len(datasets)),
		catalog:  catalog,
	}
	if s.catalog == nil {
		s.catalog = model.NewCatalog()
	}

	// keep the enum's display order regardless of map iteration
	for _, id := range model.DatasetIDs() {
		obs, ok := datasets[id]
		if !ok {
			continue
		}
		if err := model.CheckObservations(obs); err != nil {
			return nil, fmt.Errorf("dataset %s: %w", id, err)
		}
		owned := make([]model.RankObservation, len(obs))
		copy(owned, obs)
		s.datasets[id] = owned
		s.ids = append(s.ids, id)
	}
	return s, nil
}

// Load fetches the given datasets and the product catalog from a provider
func Load(ctx context.Context, provider data.Provider, ids []model.DatasetID, progress data.ProgressCallback) (*Store, error) {
	datasets := make(map[model.DatasetID][]model.RankObservation, len(ids))
	for i, id := range ids {
		obs, err := provider.FetchObservations(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset %s: %w", id, err)
		}
		datasets[id] = obs

		if progress != nil {
			progress(data.LoadProgress{
				DatasetID:    id,
				Observations: len(obs),
				Done:         i + 1,
				Total:        len(ids),
			})
		}
	}

	products, err := provider.FetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	return NewStore(datasets, model.NewCatalog(products...))
}

// IDs returns the loaded dataset ids in display order
func (s *Store) IDs() []model.DatasetID {
	ids := make([]model.DatasetID, len(s.ids))
	copy(ids, s.ids)
	return ids
}

// Has reports whether a dataset is loaded
func (s *Store) Has(id model.DatasetID) bool {
	_, ok := s.datasets[id]
	return ok
}

// Observations returns a copy of a dataset's observations
func (s *Store) Observations(id model.DatasetID) ([]model.RankObservation, error) {
	obs, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", model.ErrUnknownDataset, id)
	}
	result := make([]model.RankObservation, len(obs))
	copy(result, obs)
	return result, nil
}

// Len returns the number of observations in a dataset
func (s *Store) Len(id model.DatasetID) int {
	return len(s.datasets[id])
}

// Catalog returns the product name catalog
func (s *Store) Catalog() *model.Catalog {
	return s.catalog
}
