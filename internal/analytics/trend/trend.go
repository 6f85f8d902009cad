// Package trend compares period aggregates, fits a linear growth trajectory
// and extrapolates a short forecast.
package trend

import (
	"github.com/soltixdb/insight/internal/analytics"
)

// Analysis is the full output of Analyze.
type Analysis struct {
	Trends     []TrendResult    `json:"trends"`
	Trajectory GrowthTrajectory `json:"trajectory"`
	Forecast   []ForecastPoint  `json:"forecast"`
}

// Analyze runs the period comparisons and fits the trajectory over the
// present values of series, then forecasts DefaultHorizon steps.
func Analyze(series analytics.Series, periods []PeriodInput) Analysis {
	return AnalyzeWithHorizon(series, periods, DefaultHorizon)
}

// AnalyzeWithHorizon is Analyze with an explicit forecast horizon. An empty
// series produces no forecast.
func AnalyzeWithHorizon(series analytics.Series, periods []PeriodInput, horizon int) Analysis {
	trends := make([]TrendResult, 0, len(periods))
	for _, p := range periods {
		trends = append(trends, Compare(p))
	}

	values := series.Values()
	trajectory := FitTrajectory(values)

	var forecast []ForecastPoint
	if len(values) > 0 {
		forecast = Forecast(values[len(values)-1], trajectory.Slope, horizon)
	}

	return Analysis{
		Trends:     trends,
		Trajectory: trajectory,
		Forecast:   forecast,
	}
}
