// Package filter narrows rank datasets by date and rank and discovers the
// date bounds of a dataset.
package filter

import (
	"errors"
	"fmt"

	"github.com/tunogya/rankview/pkg/model"
)

// ErrEmptyDataset is returned when date bounds are requested for a dataset
// without observations
var ErrEmptyDataset = errors.New("invalid input: empty dataset")

// Range returns the observations dated within r (inclusive) whose rank is at
// most maxRank. The input is never modified and the result is never nil.
func Range(obs []model.RankObservation, r model.DateRange, maxRank int) []model.RankObservation {
	result := make([]model.RankObservation, 0, len(obs))
	for _, o := range obs {
		if o.Rank > maxRank || !r.Contains(o.Date) {
			continue
		}
		result = append(result, o)
	}
	return result
}

// DiscoverRange returns the earliest and latest observation dates
func DiscoverRange(obs []model.RankObservation) (model.DateRange, error) {
	if len(obs) == 0 {
		return model.DateRange{}, ErrEmptyDataset
	}

	r := model.DateRange{Start: obs[0].Date, End: obs[0].Date}
	for _, o := range obs[1:] {
		if o.Date.Before(r.Start) {
			r.Start = o.Date
		}
		if o.Date.After(r.End) {
			r.End = o.Date
		}
	}
	return r, nil
}

// DiscoverDatasetRange is DiscoverRange with the dataset id in the error
func DiscoverDatasetRange(id model.DatasetID, obs []model.RankObservation) (model.DateRange, error) {
	r, err := DiscoverRange(obs)
	if err != nil {
		return r, fmt.Errorf("dataset %s: %w", id, err)
	}
	return r, nil
}
