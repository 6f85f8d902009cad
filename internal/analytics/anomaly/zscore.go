package anomaly

import (
	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/descriptive"
)

// ZScoreDetector flags points whose distance from the series mean, in
// population standard deviations, reaches the warning threshold.
type ZScoreDetector struct{}

func init() {
	RegisterDetector("zscore", &ZScoreDetector{})
}

// Name returns the algorithm name
func (z *ZScoreDetector) Name() string {
	return "zscore"
}

// Detect finds spikes and drops. A zero standard deviation yields nothing.
func (z *ZScoreDetector) Detect(series analytics.Series, thresholds Thresholds) []Record {
	values, indices := series.Present()
	s := descriptive.Compute(values)
	if s.Count == 0 || s.StdDev == 0 {
		return nil
	}

	var results []Record
	for k, v := range values {
		score := CalculateZScore(v, s.Mean, s.StdDev)
		if score < thresholds.Warning {
			continue
		}

		severity := SeverityWarning
		if score >= thresholds.Critical {
			severity = SeverityCritical
		}
		kind := TypeDrop
		if v > s.Mean {
			kind = TypeSpike
		}

		idx := indices[k]
		results = append(results, Record{
			Index:         idx,
			Timestamp:     series[idx].Timestamp,
			Value:         ptr(v),
			ExpectedValue: ptr(s.Mean),
			Deviation:     ptr(v - s.Mean),
			ZScore:        ptr(score),
			Severity:      severity,
			Type:          kind,
			Method:        MethodZScore,
		})
	}

	return results
}
