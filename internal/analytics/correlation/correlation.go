// Package correlation builds Pearson correlation matrices over named metric
// series and flags strongly correlated pairs.
package correlation

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// DefaultThreshold is the |r| at which a pair is reported as significant.
const DefaultThreshold = 0.7

// Strength band of |r|
type Strength string

const (
	StrengthVeryWeak   Strength = "very_weak"
	StrengthWeak       Strength = "weak"
	StrengthModerate   Strength = "moderate"
	StrengthStrong     Strength = "strong"
	StrengthVeryStrong Strength = "very_strong"
)

// Direction is the sign of r
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// Significance is a coarse t-test of r. PValue is a tier (0.001, 0.01 or
// 0.05), not a Student-t tail probability.
type Significance struct {
	TStatistic    float64 `json:"t_statistic"`
	PValue        float64 `json:"p_value_tier"`
	IsSignificant bool    `json:"is_significant"`
}

// MarshalJSON writes an infinite t statistic (perfect correlation) as null.
func (s Significance) MarshalJSON() ([]byte, error) {
	var t *float64
	if !math.IsInf(s.TStatistic, 0) && !math.IsNaN(s.TStatistic) {
		t = &s.TStatistic
	}
	return json.Marshal(struct {
		TStatistic    *float64 `json:"t_statistic"`
		PValue        float64  `json:"p_value_tier"`
		IsSignificant bool     `json:"is_significant"`
	}{t, s.PValue, s.IsSignificant})
}

// Pair is the correlation between two metrics. MetricA sorts before MetricB.
type Pair struct {
	MetricA      string       `json:"metric_a"`
	MetricB      string       `json:"metric_b"`
	R            float64      `json:"r"`
	N            int          `json:"n"`
	Strength     Strength     `json:"strength"`
	Direction    Direction    `json:"direction"`
	Significance Significance `json:"significance"`
}

// Result holds the full symmetric matrix and the pairs at or above the threshold.
type Result struct {
	Metrics          []string                      `json:"metrics"`
	Matrix           map[string]map[string]float64 `json:"matrix"`
	Pairs            []Pair                        `json:"pairs"`
	SignificantPairs []Pair                        `json:"significant_pairs"`
	Threshold        float64                       `json:"threshold"`
}

// ComputeMatrix correlates every unordered pair of metrics. The diagonal is
// exactly 1. SignificantPairs holds each pair with |r| >= threshold once,
// strongest first.
func ComputeMatrix(seriesByMetric map[string][]float64, threshold float64) Result {
	names := make([]string, 0, len(seriesByMetric))
	for name := range seriesByMetric {
		names = append(names, name)
	}
	sort.Strings(names)

	matrix := make(map[string]map[string]float64, len(names))
	for _, name := range names {
		matrix[name] = map[string]float64{name: 1.0}
	}

	res := Result{
		Metrics:          names,
		Matrix:           matrix,
		Pairs:            []Pair{},
		SignificantPairs: []Pair{},
		Threshold:        threshold,
	}

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := names[i], names[j]
			pair := Correlate(a, b, seriesByMetric[a], seriesByMetric[b])

			matrix[a][b] = pair.R
			matrix[b][a] = pair.R
			res.Pairs = append(res.Pairs, pair)
			if math.Abs(pair.R) >= threshold {
				res.SignificantPairs = append(res.SignificantPairs, pair)
			}
		}
	}

	sort.SliceStable(res.SignificantPairs, func(i, j int) bool {
		return math.Abs(res.SignificantPairs[i].R) > math.Abs(res.SignificantPairs[j].R)
	})
	return res
}

// Correlate computes and classifies r for one pair.
func Correlate(metricA, metricB string, a, b []float64) Pair {
	xs, ys := aligned(a, b)
	r := Pearson(xs, ys)

	direction := DirectionPositive
	if r < 0 {
		direction = DirectionNegative
	}

	return Pair{
		MetricA:      metricA,
		MetricB:      metricB,
		R:            r,
		N:            len(xs),
		Strength:     ClassifyStrength(r),
		Direction:    direction,
		Significance: TestSignificance(r, len(xs)),
	}
}

// Pearson returns covariance/(std_a*std_b) with population statistics.
// It is 0 for fewer than two points or when either series is constant, and
// is clamped to [-1, 1]. xs and ys must have equal length.
func Pearson(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0
	}

	stdA := stat.PopStdDev(xs, nil)
	stdB := stat.PopStdDev(ys, nil)
	if stdA == 0 || stdB == 0 {
		return 0
	}

	cov, err := stats.CovariancePopulation(xs, ys)
	if err != nil {
		return 0
	}

	r := cov / (stdA * stdB)
	if math.IsNaN(r) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// ClassifyStrength bands |r|.
func ClassifyStrength(r float64) Strength {
	switch abs := math.Abs(r); {
	case abs >= 0.9:
		return StrengthVeryStrong
	case abs >= 0.7:
		return StrengthStrong
	case abs >= 0.5:
		return StrengthModerate
	case abs >= 0.3:
		return StrengthWeak
	default:
		return StrengthVeryWeak
	}
}

// TestSignificance computes t = r*sqrt(n-2)/sqrt(1-r^2) and maps |t| to a
// p-value tier: 0.001 above 3, 0.01 above 2, else 0.05. |r| = 1 gives an
// infinite t and the 0.001 tier.
func TestSignificance(r float64, n int) Significance {
	var t float64
	switch {
	case math.Abs(r) >= 1:
		t = math.Inf(1)
		if r < 0 {
			t = math.Inf(-1)
		}
	case n > 2:
		t = r * math.Sqrt(float64(n-2)) / math.Sqrt(1-r*r)
	}

	p := 0.05
	switch abs := math.Abs(t); {
	case abs > 3:
		p = 0.001
	case abs > 2:
		p = 0.01
	}

	return Significance{
		TStatistic:    t,
		PValue:        p,
		IsSignificant: p < 0.05,
	}
}

// aligned truncates a and b to their common length and drops positions
// where either value is not finite.
func aligned(a, b []float64) (xs, ys []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	xs = make([]float64, 0, n)
	ys = make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if !finite(a[i]) || !finite(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	return xs, ys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
