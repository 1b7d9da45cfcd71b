package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the on-disk format of observation dates (MM/DD/YYYY)
const DateLayout = "01/02/2006"

// isoLayout matches the labels the chart renderer expects
const isoLayout = "2006-01-02T15:04:05.000Z"

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidRank          = errors.New("invalid rank")
	ErrDuplicateObservation = errors.New("duplicate observation")
)

// Date is a calendar day. The underlying time is always midnight UTC so two
// Dates compare equal iff they name the same day.
type Date struct {
	t time.Time
}

// NewDate creates a Date from year, month and day
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar day in the time's own location
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a MM/DD/YYYY string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals known to be valid
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns the date as midnight UTC
func (d Date) Time() time.Time {
	return d.t
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// AddDays returns the date shifted by n days
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// String formats the date as MM/DD/YYYY
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// ISO formats the date as an ISO-8601 UTC timestamp
func (d Date) ISO() string {
	return d.t.Format(isoLayout)
}

// MarshalText implements encoding.TextMarshaler using MM/DD/YYYY
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using MM/DD/YYYY
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// RankObservation is one sales-rank reading of a product on a given day
type RankObservation struct {
	ASIN string `json:"ASIN"`
	Date Date   `json:"date"`
	Rank int    `json:"rank"`
}

// NewRankObservation parses a raw (ASIN, MM/DD/YYYY, rank) triple
func NewRankObservation(asin, date string, rank int) (RankObservation, error) {
	asin = strings.TrimSpace(asin)
	if asin == "" {
		return RankObservation{}, errors.New("empty ASIN")
	}
	d, err := ParseDate(date)
	if err != nil {
		return RankObservation{}, err
	}
	if rank < 1 {
		return RankObservation{}, fmt.Errorf("%w %d for %s on %s", ErrInvalidRank, rank, asin, d)
	}
	return RankObservation{ASIN: asin, Date: d, Rank: rank}, nil
}

// Key identifies the (ASIN, date) cell an observation occupies
func (o RankObservation) Key() ObservationKey {
	return ObservationKey{ASIN: o.ASIN, Date: o.Date}
}

// ObservationKey is unique within a dataset
type ObservationKey struct {
	ASIN string
	Date Date
}

// CheckObservations verifies ranks are positive and no (ASIN, date) pair
// repeats
func CheckObservations(obs []RankObservation) error {
	seen := make(map[ObservationKey]struct{}, len(obs))
	for i, o := range obs {
		if o.Rank < 1 {
			return fmt.Errorf("observation %d: %w %d", i, ErrInvalidRank, o.Rank)
		}
		if o.Date.IsZero() {
			return fmt.Errorf("observation %d: %w: zero date", i, ErrInvalidDate)
		}
		k := o.Key()
		if _, ok := seen[k]; ok {
			return fmt.Errorf("observation %d: %w for %s on %s", i, ErrDuplicateObservation, o.ASIN, o.Date)
		}
		seen[k] = struct{}{}
	}
	return nil
}
