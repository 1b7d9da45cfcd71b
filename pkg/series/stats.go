package series

import "math"

// Trend directions. Lower rank is better, so a falling rank is improving.
const (
	TrendImproving = "improving"
	TrendSteady    = "steady"
	TrendDeclining = "declining"
	TrendUnknown   = "insufficient data"
)

// steadySlope is the rank change per axis step treated as flat
const steadySlope = 0.5

// Summary holds legend and tooltip statistics for one series
type Summary struct {
	ProductID  string  `json:"product_id"`
	Label      string  `json:"label"`
	Observed   int     `json:"observed"`
	Coverage   float64 `json:"coverage"` // share of axis dates with a value
	Best       int     `json:"best"`
	Worst      int     `json:"worst"`
	Latest     int     `json:"latest"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	TrendSlope float64 `json:"trend_slope"` // least-squares rank change per axis step
	Trend      string  `json:"trend"`
}

// Summarize computes statistics over the present points of a series
func Summarize(s Series) Summary {
	sum := Summary{ProductID: s.ProductID, Label: s.Label, Trend: TrendUnknown}

	var xs, ys []float64
	for i, p := range s.Points {
		if p == nil {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, float64(*p))

		if sum.Observed == 0 || *p < sum.Best {
			sum.Best = *p
		}
		if *p > sum.Worst {
			sum.Worst = *p
		}
		sum.Latest = *p
		sum.Observed++
	}
	if sum.Observed == 0 {
		return sum
	}

	sum.Coverage = float64(sum.Observed) / float64(len(s.Points))
	sum.Mean, sum.StdDev = meanStd(ys)

	if sum.Observed >= 2 {
		sum.TrendSlope = trendSlope(xs, ys)
		sum.Trend = classifyTrend(sum.TrendSlope)
	}
	return sum
}

// SummarizeChart summarizes every series of a chart in order
func SummarizeChart(c Chart) []Summary {
	summaries := make([]Summary, len(c.Series))
	for i, s := range c.Series {
		summaries[i] = Summarize(s)
	}
	return summaries
}

func classifyTrend(slope float64) string {
	switch {
	case slope < -steadySlope:
		return TrendImproving
	case slope > steadySlope:
		return TrendDeclining
	default:
		return TrendSteady
	}
}

// trendSlope fits y = a + b*x by least squares and returns b
func trendSlope(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumX2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denominator
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	std = math.Sqrt(sumSquares / float64(len(values)))

	return mean, std
}
