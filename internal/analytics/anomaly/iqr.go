package anomaly

import (
	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/descriptive"
)

// IQRFence is the fence multiplier k in [p25 - k*IQR, p75 + k*IQR].
// Points beyond twice the fence are critical.
const IQRFence = 1.5

// IQRDetector flags outliers outside the interquartile fences. It is robust
// to the spikes that inflate the z-score standard deviation. Not part of the
// default pipeline; request it with DetectWith.
type IQRDetector struct{}

func init() {
	RegisterDetector("iqr", &IQRDetector{})
}

// Name returns the algorithm name
func (iqr *IQRDetector) Name() string {
	return "iqr"
}

// Detect finds outliers. A zero IQR yields nothing.
func (iqr *IQRDetector) Detect(series analytics.Series, _ Thresholds) []Record {
	values, indices := series.Present()
	s := descriptive.Compute(values)
	if s.Count == 0 || s.IQR == 0 {
		return nil
	}

	lower := s.P25 - IQRFence*s.IQR
	upper := s.P75 + IQRFence*s.IQR

	var results []Record
	for k, v := range values {
		var beyond float64
		switch {
		case v < lower:
			beyond = lower - v
		case v > upper:
			beyond = v - upper
		default:
			continue
		}

		severity := SeverityWarning
		if beyond > IQRFence*s.IQR {
			severity = SeverityCritical
		}

		idx := indices[k]
		results = append(results, Record{
			Index:         idx,
			Timestamp:     series[idx].Timestamp,
			Value:         ptr(v),
			ExpectedValue: ptr(s.Median),
			Deviation:     ptr(v - s.Median),
			Severity:      severity,
			Type:          TypeOutlier,
			Method:        MethodIQR,
		})
	}

	return results
}

// CalculateIQR returns the truncated Q1, Q3 and their difference.
func CalculateIQR(values []float64) (q1, q3, iqr float64) {
	s := descriptive.Compute(values)
	return s.P25, s.P75, s.IQR
}
