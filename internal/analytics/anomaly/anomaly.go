package anomaly

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soltixdb/insight/internal/analytics"
)

// Sensitivity selects the z-score thresholds used by the z-score detector.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// Thresholds are the warning and critical z-score cut-offs.
type Thresholds struct {
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

// Thresholds returns the cut-offs for s. Unknown values fall back to medium.
func (s Sensitivity) Thresholds() Thresholds {
	switch s {
	case SensitivityLow:
		return Thresholds{Warning: 2.5, Critical: 3.5}
	case SensitivityHigh:
		return Thresholds{Warning: 1.5, Critical: 2.5}
	default:
		return Thresholds{Warning: 2.0, Critical: 3.0}
	}
}

// ParseSensitivity parses a sensitivity name. An empty string means medium.
func ParseSensitivity(s string) (Sensitivity, error) {
	switch Sensitivity(strings.ToLower(strings.TrimSpace(s))) {
	case "", SensitivityMedium:
		return SensitivityMedium, nil
	case SensitivityLow:
		return SensitivityLow, nil
	case SensitivityHigh:
		return SensitivityHigh, nil
	default:
		return "", fmt.Errorf("unknown sensitivity: %q (supported: low, medium, high)", s)
	}
}

// Severity of a detected anomaly
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Type represents the type of anomaly detected
type Type string

const (
	TypeSpike       Type = "spike"        // Value far above the mean
	TypeDrop        Type = "drop"         // Value far below the mean
	TypeTrendChange Type = "trend_change" // Abnormal period-over-period rate
	TypeMissingData Type = "missing_data" // Gap in the series
	TypeFlatline    Type = "flatline"     // No variation (possibly a stuck feed)
	TypeOutlier     Type = "outlier"      // Outside the IQR fences
)

// Method names the detection step that produced a record
type Method string

const (
	MethodZScore       Method = "z_score"
	MethodRateOfChange Method = "rate_of_change"
	MethodPattern      Method = "pattern"
	MethodIQR          Method = "iqr"
)

// Level is used for both priority and confidence.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Record is a single detected anomaly. Optional numeric fields are nil when
// the producing step has no such measure (pattern anomalies carry no z-score).
type Record struct {
	Index         int      `json:"index"`
	Timestamp     string   `json:"timestamp"`
	Value         *float64 `json:"value"`
	ExpectedValue *float64 `json:"expected_value,omitempty"`
	Deviation     *float64 `json:"deviation,omitempty"`
	ZScore        *float64 `json:"z_score,omitempty"`
	Severity      Severity `json:"severity"`
	Type          Type     `json:"type"`
	Method        Method   `json:"method"`
	Priority      Level    `json:"priority"`
	Confidence    Level    `json:"confidence"`
}

// Detector is one candidate-producing step of the pipeline.
type Detector interface {
	// Name returns the registry name
	Name() string

	// Detect returns candidate records; Priority and Confidence are filled
	// in later by the merge pass.
	Detect(series analytics.Series, thresholds Thresholds) []Record
}

var detectorRegistry = make(map[string]Detector)

// RegisterDetector adds a detector to the registry. Call from init only.
func RegisterDetector(name string, detector Detector) {
	detectorRegistry[name] = detector
}

// GetDetector returns a detector by name
func GetDetector(name string) (Detector, error) {
	if detector, ok := detectorRegistry[name]; ok {
		return detector, nil
	}
	return nil, fmt.Errorf("unknown anomaly detector: %s", name)
}

// ListDetectors returns the registered detector names, sorted.
func ListDetectors() []string {
	names := make([]string, 0, len(detectorRegistry))
	for name := range detectorRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMethods is the detection pipeline run by Detect, in merge order.
var DefaultMethods = []string{"zscore", "rate_of_change", "pattern"}

// Detect runs the default pipeline (z-score, rate of change, pattern) and
// returns at most one record per series index, sorted by index.
func Detect(series analytics.Series, sensitivity Sensitivity) []Record {
	records, _ := DetectWith(series, sensitivity, DefaultMethods...)
	return records
}

// DetectWith runs the named detectors in order and merges their candidates.
// When two detectors flag the same index the earlier detector wins.
func DetectWith(series analytics.Series, sensitivity Sensitivity, methods ...string) ([]Record, error) {
	thresholds := sensitivity.Thresholds()

	var candidates []Record
	for _, name := range methods {
		detector, err := GetDetector(name)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, detector.Detect(series, thresholds)...)
	}

	return merge(candidates, thresholds), nil
}

// merge deduplicates by index (first occurrence wins), sorts ascending and
// assigns priority and confidence.
func merge(candidates []Record, thresholds Thresholds) []Record {
	seen := make(map[int]struct{}, len(candidates))
	out := make([]Record, 0, len(candidates))
	for _, r := range candidates {
		if _, dup := seen[r.Index]; dup {
			continue
		}
		seen[r.Index] = struct{}{}
		out = append(out, classify(r, thresholds))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})
	return out
}

func classify(r Record, thresholds Thresholds) Record {
	if r.Severity == SeverityCritical {
		r.Priority = LevelHigh
	} else {
		r.Priority = LevelMedium
	}

	r.Confidence = LevelLow
	if r.ZScore != nil {
		switch z := *r.ZScore; {
		case z >= thresholds.Critical:
			r.Confidence = LevelHigh
		case z >= 2.0:
			r.Confidence = LevelMedium
		}
	}
	return r
}

// CalculateZScore returns |value-mean|/stdDev, or 0 when stdDev is 0.
func CalculateZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	d := value - mean
	if d < 0 {
		d = -d
	}
	return d / stdDev
}

func ptr(v float64) *float64 {
	return &v
}
