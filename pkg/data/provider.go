package data

import (
	"context"

	"github.com/tunogya/rankview/pkg/model"
)

// DatasetProvider defines the interface for loading static rank datasets
type DatasetProvider interface {
	// FetchObservations returns every observation of a dataset in source order
	FetchObservations(ctx context.Context, id model.DatasetID) ([]model.RankObservation, error)
}

// CatalogProvider defines the interface for loading product display names
type CatalogProvider interface {
	// FetchProducts returns all known products
	FetchProducts(ctx context.Context) ([]model.Product, error)
}

// Provider is a source of both datasets and product names
type Provider interface {
	DatasetProvider
	CatalogProvider
}

// LoadProgress reports how far a multi-dataset load has advanced
type LoadProgress struct {
	DatasetID    model.DatasetID
	Observations int
	Done         int
	Total        int
}

// ProgressCallback is called after each dataset is loaded
type ProgressCallback func(progress LoadProgress)
