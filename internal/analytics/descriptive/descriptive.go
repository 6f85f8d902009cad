// Package descriptive computes population summary statistics over numeric
// samples. It is the leaf package the other analytics packages build on.
package descriptive

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Stats summarizes a sample. All fields are zero when Count is zero.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	IQR    float64 `json:"iqr"`
}

// Compute summarizes values. NaN and infinite entries are dropped before
// computation. Variance is the population variance (divides by n). Every
// field of the result is finite.
func Compute(values []float64) Stats {
	data := Clean(values)
	if len(data) == 0 {
		return Stats{}
	}

	minVal, _ := stats.Min(data)
	maxVal, _ := stats.Max(data)
	mean, stdDev, median := moments(data)
	if !isFinite(mean) || !isFinite(stdDev) || !isFinite(median) {
		mean, stdDev, median = scaledMoments(data, math.Max(math.Abs(minVal), math.Abs(maxVal)))
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	p25 := TruncatedPercentile(sorted, 0.25)
	p75 := TruncatedPercentile(sorted, 0.75)

	return Stats{
		Count:  len(data),
		Mean:   Finite(mean),
		StdDev: Finite(stdDev),
		Min:    minVal,
		Max:    maxVal,
		Median: Finite(median),
		P25:    p25,
		P75:    p75,
		IQR:    Finite(p75 - p25),
	}
}

func moments(data []float64) (mean, stdDev, median float64) {
	mean, _ = stats.Mean(data)
	variance, _ := stats.PopulationVariance(data)
	median, _ = stats.Median(data)
	return mean, math.Sqrt(math.Max(variance, 0)), median
}

// scaledMoments computes the moments of data divided by the power of two
// at or above maxAbs, so sums near math.MaxFloat64 do not overflow.
func scaledMoments(data []float64, maxAbs float64) (mean, stdDev, median float64) {
	if maxAbs == 0 {
		return 0, 0, 0
	}
	_, exp := math.Frexp(maxAbs)
	scaled := make([]float64, len(data))
	for i, v := range data {
		scaled[i] = math.Ldexp(v, -exp)
	}
	mean, stdDev, median = moments(scaled)
	return math.Ldexp(mean, exp), math.Ldexp(stdDev, exp), math.Ldexp(median, exp)
}

// Finite maps NaN to 0 and clamps infinities to ±math.MaxFloat64 so the
// value survives JSON encoding.
func Finite(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MeanStdDev returns the mean and population standard deviation of values,
// or zeros for an empty input.
func MeanStdDev(values []float64) (mean, stdDev float64) {
	s := Compute(values)
	return s.Mean, s.StdDev
}

// TruncatedPercentile returns sorted[floor(n*p)], clamped to the last
// element. This is nearest-rank with truncation, not linear interpolation,
// and sits slightly above the interpolated percentile for small samples.
// sorted must be in ascending order.
func TruncatedPercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Floor(float64(n) * p))
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

// Clean returns the finite entries of values in their original order.
func Clean(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
