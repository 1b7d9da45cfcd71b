package model

import (
	"errors"
	"fmt"
	"strings"
)

// DatasetID selects one of the static rank datasets
type DatasetID string

const (
	DatasetFurniture               DatasetID = "bsr-furniture"
	DatasetBedroomFurniture        DatasetID = "bsr-bedroom-furniture"
	DatasetMattressesAndBoxSprings DatasetID = "bsr-mattresses-and-box-springs"
)

var (
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrInvalidRange   = errors.New("invalid date range")
)

// DatasetIDs lists every known dataset in display order
func DatasetIDs() []DatasetID {
	return []DatasetID{
		DatasetFurniture,
		DatasetBedroomFurniture,
		DatasetMattressesAndBoxSprings,
	}
}

// ParseDatasetID accepts the identifier case-insensitively
func ParseDatasetID(s string) (DatasetID, error) {
	id := DatasetID(strings.ToLower(strings.TrimSpace(s)))
	if !id.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownDataset, s)
	}
	return id, nil
}

// Valid reports whether id is one of DatasetIDs
func (id DatasetID) Valid() bool {
	for _, known := range DatasetIDs() {
		if id == known {
			return true
		}
	}
	return false
}

func (id DatasetID) String() string {
	return string(id)
}

// DateRange is an inclusive span of calendar days
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// NewDateRange builds a range without validating its order
func NewDateRange(start, end Date) DateRange {
	return DateRange{Start: start, End: end}
}

// LastDays returns the n-day range ending on end
func LastDays(end Date, n int) DateRange {
	return DateRange{Start: end.AddDays(-(n - 1)), End: end}
}

// Contains reports whether d is within the range, boundaries included.
// An inverted range contains nothing.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Validate rejects zero or inverted ranges
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: missing bound", ErrInvalidRange)
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s to %s", r.Start, r.End)
}

// ValidateMaxRank rejects thresholds that cannot match any observation
func ValidateMaxRank(maxRank int) error {
	if maxRank < 1 {
		return fmt.Errorf("%w: max rank %d must be positive", ErrInvalidRank, maxRank)
	}
	return nil
}

// Selection is the user's current choice of dataset, dates and threshold
type Selection struct {
	DatasetID DatasetID `json:"dataset_id"`
	DateRange DateRange `json:"date_range"`
	MaxRank   int       `json:"max_rank"`
}

// Default selection values used when nothing else is configured
const (
	DefaultEndDate   = "11/30/2019"
	DefaultRangeDays = 7
	DefaultMaxRank   = 100
)

// DefaultSelection is the furniture dataset, the week ending 11/30/2019 and
// ranks up to 100
func DefaultSelection() Selection {
	return Selection{
		DatasetID: DatasetFurniture,
		DateRange: LastDays(MustParseDate(DefaultEndDate), DefaultRangeDays),
		MaxRank:   DefaultMaxRank,
	}
}

// Validate checks every field of the selection
func (s Selection) Validate() error {
	if !s.DatasetID.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownDataset, s.DatasetID)
	}
	if err := s.DateRange.Validate(); err != nil {
		return err
	}
	return ValidateMaxRank(s.MaxRank)
}
