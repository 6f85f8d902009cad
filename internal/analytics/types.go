// Package analytics provides the shared time-series types used by the
// statistics packages (descriptive, anomaly, trend, correlation, abtest).
package analytics

import "math"

// TimeSeriesPoint is a single observation. Value is nil when the point is a
// data gap.
type TimeSeriesPoint struct {
	Timestamp string   `json:"timestamp"`
	Value     *float64 `json:"value"`
}

// Series is an ordered sequence of points. Slice order is time order.
type Series []TimeSeriesPoint

// Float returns a pointer to v, for building points with a present value.
func Float(v float64) *float64 {
	return &v
}

// IsPresent reports whether the point carries a usable numeric value.
func (p TimeSeriesPoint) IsPresent() bool {
	return p.Value != nil && !math.IsNaN(*p.Value) && !math.IsInf(*p.Value, 0)
}

// NewSeries builds a gap-free series from raw values; timestamps are left empty.
func NewSeries(values []float64) Series {
	s := make(Series, len(values))
	for i := range values {
		s[i] = TimeSeriesPoint{Value: Float(values[i])}
	}
	return s
}

// Present returns the present values together with their original indices.
func (s Series) Present() (values []float64, indices []int) {
	values = make([]float64, 0, len(s))
	indices = make([]int, 0, len(s))
	for i, p := range s {
		if p.IsPresent() {
			values = append(values, *p.Value)
			indices = append(indices, i)
		}
	}
	return values, indices
}

// Values returns only the present values.
func (s Series) Values() []float64 {
	values, _ := s.Present()
	return values
}

// Floats returns one value per point, NaN at gaps, so positions line up
// across series of the same length.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		if p.IsPresent() {
			out[i] = *p.Value
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Len returns the number of points, gaps included.
func (s Series) Len() int {
	return len(s)
}
