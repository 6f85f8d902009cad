package anomaly

import (
	"github.com/soltixdb/insight/internal/analytics"
)

// FlatlineWindow is the number of consecutive identical points that make a flatline.
const FlatlineWindow = 5

// PatternDetector finds structural problems: stuck values and data gaps.
type PatternDetector struct{}

func init() {
	RegisterDetector("pattern", &PatternDetector{})
}

// Name returns the algorithm name
func (p *PatternDetector) Name() string {
	return "pattern"
}

// Detect emits a flatline record at the last index of every window of
// FlatlineWindow identical present values, and a missing_data record for
// every gap. Windows start at 0..n-FlatlineWindow-1, so a series made of a
// single window is never reported.
func (p *PatternDetector) Detect(series analytics.Series, _ Thresholds) []Record {
	var results []Record

	for i := 0; i < len(series)-FlatlineWindow; i++ {
		if !flat(series[i : i+FlatlineWindow]) {
			continue
		}
		last := i + FlatlineWindow - 1
		results = append(results, Record{
			Index:     last,
			Timestamp: series[last].Timestamp,
			Value:     ptr(*series[last].Value),
			Severity:  SeverityWarning,
			Type:      TypeFlatline,
			Method:    MethodPattern,
		})
	}

	for i, point := range series {
		if point.IsPresent() {
			continue
		}
		results = append(results, Record{
			Index:     i,
			Timestamp: point.Timestamp,
			Severity:  SeverityWarning,
			Type:      TypeMissingData,
			Method:    MethodPattern,
		})
	}

	return results
}

func flat(window analytics.Series) bool {
	for _, point := range window {
		if !point.IsPresent() || *point.Value != *window[0].Value {
			return false
		}
	}
	return true
}
