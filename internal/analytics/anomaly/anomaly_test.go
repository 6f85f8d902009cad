package anomaly

import (
	"fmt"
	"testing"

	"github.com/soltixdb/insight/internal/analytics"
)

func createTestSeries(values []float64) analytics.Series {
	series := analytics.NewSeries(values)
	for i := range series {
		series[i].Timestamp = fmt.Sprintf("2024-01-%02dT00:00:00Z", i+1)
	}
	return series
}

func TestDetect_IdenticalValues(t *testing.T) {
	series := createTestSeries([]float64{10, 10, 10, 10, 10})

	results := Detect(series, SensitivityMedium)
	if len(results) != 0 {
		t.Fatalf("Expected no anomalies for constant series, got %d: %+v", len(results), results)
	}
}

func TestDetect_CriticalSpike(t *testing.T) {
	series := createTestSeries([]float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 100})

	results := Detect(series, SensitivityMedium)
	if len(results) == 0 {
		t.Fatal("Expected to detect the spike at index 9")
	}

	last := results[len(results)-1]
	if last.Index != 9 {
		t.Fatalf("Expected last record at index 9, got %d", last.Index)
	}
	if last.Severity != SeverityCritical {
		t.Errorf("Expected severity critical, got %s", last.Severity)
	}
	if last.Type != TypeSpike {
		t.Errorf("Expected type spike, got %s", last.Type)
	}
	// the rate-of-change step flags index 9 too; the z-score record is kept
	if last.Method != MethodZScore {
		t.Errorf("Expected method z_score to win the merge, got %s", last.Method)
	}
	if last.Priority != LevelHigh {
		t.Errorf("Expected priority high, got %s", last.Priority)
	}
	if last.Confidence != LevelHigh {
		t.Errorf("Expected confidence high, got %s", last.Confidence)
	}
	if last.ZScore == nil || *last.ZScore != 3.0 {
		t.Errorf("Expected z-score 3.0, got %v", last.ZScore)
	}
	if last.ExpectedValue == nil || *last.ExpectedValue != 19 {
		t.Errorf("Expected expected value 19, got %v", last.ExpectedValue)
	}
	if last.Deviation == nil || *last.Deviation != 81 {
		t.Errorf("Expected deviation 81, got %v", last.Deviation)
	}
	if last.Timestamp != "2024-01-10T00:00:00Z" {
		t.Errorf("Unexpected timestamp %s", last.Timestamp)
	}
}

func TestDetect_SortedAndUnique(t *testing.T) {
	series := createTestSeries([]float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 100})

	results := Detect(series, SensitivityHigh)

	seen := make(map[int]bool)
	for i, r := range results {
		if seen[r.Index] {
			t.Errorf("Duplicate record for index %d", r.Index)
		}
		seen[r.Index] = true
		if i > 0 && results[i-1].Index >= r.Index {
			t.Errorf("Records not sorted: %d before %d", results[i-1].Index, r.Index)
		}
	}

	// flatline windows end at 4..8
	for idx := 4; idx <= 8; idx++ {
		if !seen[idx] {
			t.Errorf("Expected flatline record at index %d", idx)
		}
	}
}

func TestDetect_Drop(t *testing.T) {
	// mean 40, std 20, z(0) = 2.0
	series := createTestSeries([]float64{50, 50, 50, 50, 0})

	results := Detect(series, SensitivityMedium)
	if len(results) != 1 {
		t.Fatalf("Expected 1 anomaly, got %d: %+v", len(results), results)
	}

	r := results[0]
	if r.Index != 4 || r.Type != TypeDrop || r.Severity != SeverityWarning {
		t.Errorf("Expected warning drop at index 4, got %+v", r)
	}
	if r.Priority != LevelMedium {
		t.Errorf("Expected priority medium, got %s", r.Priority)
	}
	if r.Confidence != LevelMedium {
		t.Errorf("Expected confidence medium, got %s", r.Confidence)
	}
}

func TestDetect_LowSensitivity(t *testing.T) {
	series := createTestSeries([]float64{50, 50, 50, 50, 0})

	results := Detect(series, SensitivityLow)
	if len(results) != 0 {
		t.Errorf("Expected z=2.0 to stay below the low-sensitivity threshold, got %+v", results)
	}
}

func TestDetect_MissingData(t *testing.T) {
	series := createTestSeries([]float64{1, 2, 3, 4})
	series[2].Value = nil

	results := Detect(series, SensitivityMedium)

	var found *Record
	for i := range results {
		if results[i].Index == 2 {
			found = &results[i]
		}
	}
	if found == nil {
		t.Fatal("Expected missing_data record at index 2")
	}
	if found.Type != TypeMissingData || found.Method != MethodPattern {
		t.Errorf("Expected missing_data/pattern, got %s/%s", found.Type, found.Method)
	}
	if found.Value != nil || found.ZScore != nil {
		t.Errorf("Expected no value and no z-score on a gap, got %+v", found)
	}
	if found.Confidence != LevelLow {
		t.Errorf("Expected confidence low, got %s", found.Confidence)
	}
	if found.Priority != LevelMedium {
		t.Errorf("Expected priority medium, got %s", found.Priority)
	}
}

func TestDetect_EmptySeries(t *testing.T) {
	if results := Detect(nil, SensitivityHigh); len(results) != 0 {
		t.Errorf("Expected no anomalies for empty series, got %d", len(results))
	}
}

func TestSensitivity_Thresholds(t *testing.T) {
	tests := []struct {
		sensitivity Sensitivity
		want        Thresholds
	}{
		{SensitivityLow, Thresholds{Warning: 2.5, Critical: 3.5}},
		{SensitivityMedium, Thresholds{Warning: 2.0, Critical: 3.0}},
		{SensitivityHigh, Thresholds{Warning: 1.5, Critical: 2.5}},
		{Sensitivity("bogus"), Thresholds{Warning: 2.0, Critical: 3.0}},
	}

	for _, tt := range tests {
		if got := tt.sensitivity.Thresholds(); got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.sensitivity, tt.want, got)
		}
	}
}

func TestParseSensitivity(t *testing.T) {
	tests := []struct {
		input   string
		want    Sensitivity
		wantErr bool
	}{
		{"", SensitivityMedium, false},
		{"low", SensitivityLow, false},
		{" HIGH ", SensitivityHigh, false},
		{"medium", SensitivityMedium, false},
		{"extreme", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSensitivity(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSensitivity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSensitivity(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestRateOfChangeDetector(t *testing.T) {
	detector := &RateOfChangeDetector{}
	series := createTestSeries([]float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 100})

	results := detector.Detect(series, SensitivityMedium.Thresholds())
	if len(results) != 1 {
		t.Fatalf("Expected 1 rate anomaly, got %d", len(results))
	}

	r := results[0]
	if r.Index != 9 {
		t.Errorf("Expected rate anomaly attributed to index 9, got %d", r.Index)
	}
	if r.Type != TypeTrendChange || r.Severity != SeverityWarning || r.Method != MethodRateOfChange {
		t.Errorf("Unexpected classification %+v", r)
	}
	if r.ExpectedValue == nil || *r.ExpectedValue != 10 {
		t.Errorf("Expected previous value 10, got %v", r.ExpectedValue)
	}
	if r.ZScore == nil || *r.ZScore < RateOfChangeThreshold {
		t.Errorf("Expected rate z-score >= %.1f, got %v", RateOfChangeThreshold, r.ZScore)
	}
}

func TestPercentChanges(t *testing.T) {
	rates := PercentChanges([]float64{0, 5, 10, -10})

	want := []float64{0, 100, -200}
	if len(rates) != len(want) {
		t.Fatalf("Expected %d rates, got %d", len(want), len(rates))
	}
	for i := range want {
		if rates[i] != want[i] {
			t.Errorf("rate[%d] = %v, want %v", i, rates[i], want[i])
		}
	}

	if PercentChanges([]float64{1}) != nil {
		t.Error("Expected nil rates for a single value")
	}
}

func TestPatternDetector_Flatline(t *testing.T) {
	detector := &PatternDetector{}

	tests := []struct {
		name   string
		values []float64
		want   []int
	}{
		{"single window", []float64{10, 10, 10, 10, 10}, nil},
		{"six identical", []float64{10, 10, 10, 10, 10, 10}, []int{4}},
		{"tail plateau", []float64{1, 2, 3, 4, 5, 5, 5, 5, 5, 5}, []int{8}},
		{"no plateau", []float64{1, 2, 1, 2, 1, 2, 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := detector.Detect(createTestSeries(tt.values), Thresholds{})
			if len(results) != len(tt.want) {
				t.Fatalf("Expected %d flatlines, got %d: %+v", len(tt.want), len(results), results)
			}
			for i, r := range results {
				if r.Index != tt.want[i] || r.Type != TypeFlatline {
					t.Errorf("Expected flatline at %d, got %s at %d", tt.want[i], r.Type, r.Index)
				}
			}
		})
	}
}

func TestPatternDetector_GapBreaksFlatline(t *testing.T) {
	series := createTestSeries([]float64{7, 7, 7, 7, 7, 7, 7})
	series[3].Value = nil

	results := (&PatternDetector{}).Detect(series, Thresholds{})
	for _, r := range results {
		if r.Type == TypeFlatline {
			t.Errorf("Expected no flatline across a gap, got one at %d", r.Index)
		}
	}
	if len(results) != 1 || results[0].Type != TypeMissingData {
		t.Errorf("Expected only the gap to be reported, got %+v", results)
	}
}

func TestIQRDetector(t *testing.T) {
	// sorted: 10 10 10 10 11 11 11 11 50 -> p25 10, p75 11
	series := createTestSeries([]float64{10, 11, 10, 11, 10, 11, 10, 11, 50})

	results := (&IQRDetector{}).Detect(series, Thresholds{})
	if len(results) != 1 {
		t.Fatalf("Expected 1 outlier, got %d", len(results))
	}
	r := results[0]
	if r.Index != 8 || r.Type != TypeOutlier || r.Method != MethodIQR {
		t.Errorf("Unexpected outlier record %+v", r)
	}
	if r.Severity != SeverityCritical {
		t.Errorf("Expected critical outlier, got %s", r.Severity)
	}
}

func TestDetectWith_UnknownDetector(t *testing.T) {
	_, err := DetectWith(createTestSeries([]float64{1, 2, 3}), SensitivityMedium, "zscore", "nope")
	if err == nil {
		t.Error("Expected error for unknown detector")
	}
}

func TestDetectWith_IQR(t *testing.T) {
	series := createTestSeries([]float64{10, 11, 10, 11, 10, 11, 10, 11, 50})

	results, err := DetectWith(series, SensitivityLow, "iqr")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Priority != LevelHigh {
		t.Errorf("Expected one high-priority outlier, got %+v", results)
	}
}

func TestMerge_FirstOccurrenceWins(t *testing.T) {
	candidates := []Record{
		{Index: 5, Method: MethodZScore, Severity: SeverityWarning},
		{Index: 2, Method: MethodPattern, Severity: SeverityWarning},
		{Index: 5, Method: MethodRateOfChange, Severity: SeverityCritical},
	}

	merged := merge(candidates, SensitivityMedium.Thresholds())
	if len(merged) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(merged))
	}
	if merged[0].Index != 2 || merged[1].Index != 5 {
		t.Errorf("Expected indices [2 5], got [%d %d]", merged[0].Index, merged[1].Index)
	}
	if merged[1].Method != MethodZScore {
		t.Errorf("Expected first candidate to win, got %s", merged[1].Method)
	}
}

func TestListDetectors(t *testing.T) {
	names := ListDetectors()
	want := []string{"iqr", "pattern", "rate_of_change", "zscore"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, names)
		}
	}
}

func TestCalculateZScore(t *testing.T) {
	if got := CalculateZScore(5, 5, 0); got != 0 {
		t.Errorf("Expected 0 for zero std dev, got %v", got)
	}
	if got := CalculateZScore(1, 5, 2); got != 2 {
		t.Errorf("Expected 2, got %v", got)
	}
}
