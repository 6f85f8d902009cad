package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/soltixdb/insight/internal/analytics/descriptive"
)

// Trajectory is the overall direction of a fitted series
type Trajectory string

const (
	TrajectoryGrowing   Trajectory = "growing"
	TrajectoryDeclining Trajectory = "declining"
	TrajectoryStable    Trajectory = "stable"
)

// StableSlopeFraction is the fraction of the mean the slope must exceed for
// the series to count as growing or declining.
const StableSlopeFraction = 0.01

// GrowthTrajectory summarizes an OLS fit of value against index.
type GrowthTrajectory struct {
	Slope          float64    `json:"slope"`
	Intercept      float64    `json:"intercept"`
	RSquared       float64    `json:"r_squared"`
	CAGR           *float64   `json:"cagr"`
	Trajectory     Trajectory `json:"trajectory"`
	TotalChangePct float64    `json:"total_change_pct"`
	DataPoints     int        `json:"data_points"`
}

// FitTrajectory regresses values on 0..n-1. Fewer than two values yield a
// stable, zero-slope trajectory. R² is 0 for a constant series and is
// clamped to [0, 1].
func FitTrajectory(values []float64) GrowthTrajectory {
	n := len(values)
	g := GrowthTrajectory{Trajectory: TrajectoryStable, DataPoints: n}
	if n == 0 {
		return g
	}

	g.CAGR = CAGR(values)
	g.TotalChangePct = PercentChange(values[n-1], values[0])
	if n < 2 {
		g.Intercept = values[0]
		return g
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, values, nil, false)
	g.Intercept, g.Slope = descriptive.Finite(intercept), descriptive.Finite(slope)

	s := descriptive.Compute(values)
	ssTot := s.StdDev * s.StdDev * float64(n)
	if ssTot > 0 {
		g.RSquared = clamp(stat.RSquared(xs, values, nil, g.Intercept, g.Slope), 0, 1)
	}

	switch band := s.Mean * StableSlopeFraction; {
	case g.Slope > band:
		g.Trajectory = TrajectoryGrowing
	case g.Slope < -band:
		g.Trajectory = TrajectoryDeclining
	}

	return g
}

// CAGR returns (last/first)^(1/(n-1)) - 1. It is nil for fewer than two
// values, a non-positive first value, or a non-real result.
func CAGR(values []float64) *float64 {
	n := len(values)
	if n < 2 || values[0] <= 0 {
		return nil
	}
	v := math.Pow(values[n-1]/values[0], 1/float64(n-1)) - 1
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
