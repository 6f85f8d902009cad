package anomaly

import (
	"math"

	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/descriptive"
)

// RateOfChangeThreshold is the rate z-score at which a change is flagged.
// It does not depend on sensitivity.
const RateOfChangeThreshold = 2.5

// RateOfChangeDetector flags points whose percent change from the previous
// present point is unusual compared with the other changes in the series.
type RateOfChangeDetector struct{}

func init() {
	RegisterDetector("rate_of_change", &RateOfChangeDetector{})
}

// Name returns the algorithm name
func (r *RateOfChangeDetector) Name() string {
	return "rate_of_change"
}

// Detect computes (curr-prev)/|prev|*100 between consecutive present points
// (0 when prev is 0) and flags rates with z >= RateOfChangeThreshold.
func (r *RateOfChangeDetector) Detect(series analytics.Series, _ Thresholds) []Record {
	values, indices := series.Present()
	if len(values) < 2 {
		return nil
	}

	rates := PercentChanges(values)
	mean, std := descriptive.MeanStdDev(rates)
	if std == 0 {
		return nil
	}

	var results []Record
	for k, rate := range rates {
		score := CalculateZScore(rate, mean, std)
		if score < RateOfChangeThreshold {
			continue
		}

		// rates[k] is the change into values[k+1]
		idx := indices[k+1]
		results = append(results, Record{
			Index:         idx,
			Timestamp:     series[idx].Timestamp,
			Value:         ptr(values[k+1]),
			ExpectedValue: ptr(values[k]),
			Deviation:     ptr(rate - mean),
			ZScore:        ptr(score),
			Severity:      SeverityWarning,
			Type:          TypeTrendChange,
			Method:        MethodRateOfChange,
		})
	}

	return results
}

// PercentChanges returns the len(values)-1 consecutive percent changes.
func PercentChanges(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	rates := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		rates[i-1] = (values[i] - prev) / math.Abs(prev) * 100
	}
	return rates
}
