package series

import (
	"sort"

	"github.com/tunogya/rankview/pkg/model"
)

// NameResolver looks up the display name of a product
type NameResolver interface {
	Name(asin string) (string, bool)
}

// ResolverFunc adapts a function to NameResolver
type ResolverFunc func(asin string) (string, bool)

// Name calls f(asin)
func (f ResolverFunc) Name(asin string) (string, bool) {
	return f(asin)
}

// Series is one product's ranks aligned to Chart.Dates. A nil point means the
// product has no observation on that day.
type Series struct {
	ProductID string `json:"product_id"`
	Label     string `json:"label"`
	Points    []*int `json:"points"`
}

// Chart is a set of series sharing one ordered date axis
type Chart struct {
	Dates  []model.Date `json:"dates"`
	Series []Series     `json:"series"`
}

// Payload is the shape handed to the chart renderer
type Payload struct {
	Labels []string        `json:"labels"`
	Series []PayloadSeries `json:"series"`
}

// PayloadSeries is a renderer dataset; nil entries encode as null
type PayloadSeries struct {
	Label string `json:"label"`
	Data  []*int `json:"data"`
}

// Payload converts the chart into renderer input with ISO-8601 labels
func (c Chart) Payload() Payload {
	p := Payload{
		Labels: make([]string, len(c.Dates)),
		Series: make([]PayloadSeries, len(c.Series)),
	}
	for i, d := range c.Dates {
		p.Labels[i] = d.ISO()
	}
	for i, s := range c.Series {
		p.Series[i] = PayloadSeries{Label: s.Label, Data: copyPoints(s.Points)}
	}
	return p
}

func copyPoints(points []*int) []*int {
	result := make([]*int, len(points))
	for i, p := range points {
		if p != nil {
			v := *p
			result[i] = &v
		}
	}
	return result
}

// Builder reshapes flat observations into per-product series
type Builder struct {
	resolver NameResolver
}

// NewBuilder creates a series builder. Products the resolver cannot name are
// left out of every chart.
func NewBuilder(resolver NameResolver) *Builder {
	return &Builder{resolver: resolver}
}

// Build groups observations into one series per product. Dates are the
// distinct observation days in calendar order; products appear in the order
// they are first seen.
func (b *Builder) Build(obs []model.RankObservation) Chart {
	chart := Chart{
		Dates:  make([]model.Date, 0),
		Series: make([]Series, 0),
	}
	if len(obs) == 0 {
		return chart
	}

	ranks := make(map[model.ObservationKey]int, len(obs))
	seenDates := make(map[model.Date]struct{})
	seenProducts := make(map[string]struct{})
	var products []string

	for _, o := range obs {
		ranks[o.Key()] = o.Rank
		if _, ok := seenDates[o.Date]; !ok {
			seenDates[o.Date] = struct{}{}
			chart.Dates = append(chart.Dates, o.Date)
		}
		if _, ok := seenProducts[o.ASIN]; !ok {
			seenProducts[o.ASIN] = struct{}{}
			products = append(products, o.ASIN)
		}
	}

	sort.Slice(chart.Dates, func(i, j int) bool {
		return chart.Dates[i].Before(chart.Dates[j])
	})

	for _, asin := range products {
		label, ok := b.resolve(asin)
		if !ok {
			continue
		}

		points := make([]*int, len(chart.Dates))
		present := 0
		for i, d := range chart.Dates {
			if rank, ok := ranks[model.ObservationKey{ASIN: asin, Date: d}]; ok {
				points[i] = &rank
				present++
			}
		}
		if present == 0 {
			continue
		}

		chart.Series = append(chart.Series, Series{
			ProductID: asin,
			Label:     label,
			Points:    points,
		})
	}

	return chart
}

func (b *Builder) resolve(asin string) (string, bool) {
	if b.resolver == nil {
		return "", false
	}
	return b.resolver.Name(asin)
}
