package trend

import "github.com/soltixdb/insight/internal/analytics/descriptive"

// DefaultHorizon is the number of steps forecast by Analyze.
const DefaultHorizon = 3

// ForecastConfidence is the only label a linear extrapolation carries.
const ForecastConfidence = "medium"

// ForecastPoint is one extrapolated step beyond the last observation.
type ForecastPoint struct {
	Step       int     `json:"step"`
	Value      float64 `json:"value"`
	Confidence string  `json:"confidence"`
}

// Forecast extrapolates last + slope*k for k = 1..horizon, clamped to the
// finite float range.
func Forecast(last, slope float64, horizon int) []ForecastPoint {
	if horizon <= 0 {
		return nil
	}
	points := make([]ForecastPoint, horizon)
	for k := 1; k <= horizon; k++ {
		points[k-1] = ForecastPoint{
			Step:       k,
			Value:      descriptive.Finite(last + slope*float64(k)),
			Confidence: ForecastConfidence,
		}
	}
	return points
}
