package abtest

import "fmt"

// Issue codes
const (
	IssueSampleSizeBelowMinimum  = "sample_size_below_minimum"
	IssueInsufficientConversions = "insufficient_conversions"
	IssueNegativeValue           = "negative_value"
	IssueConversionsExceedSample = "conversions_exceed_sample_size"
	IssueUnknownMetricType       = "unknown_metric_type"
)

// Issue is one unmet precondition.
type Issue struct {
	Code    string `json:"code"`
	Variant string `json:"variant,omitempty"`
	Message string `json:"message"`
}

// ValidationFailure lists every unmet precondition. No statistic is computed
// when a test fails validation.
type ValidationFailure struct {
	Issues []Issue `json:"issues"`
}

// Error implements error so callers may wrap the failure.
func (f *ValidationFailure) Error() string {
	if len(f.Issues) == 1 {
		return f.Issues[0].Message
	}
	return fmt.Sprintf("%s (and %d more)", f.Issues[0].Message, len(f.Issues)-1)
}

// Has reports whether the failure contains an issue with code.
func (f *ValidationFailure) Has(code string) bool {
	for _, issue := range f.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// Validate checks both samples against cfg. It returns nil when the test can run.
func Validate(a, b Sample, metric MetricType, cfg Config) *ValidationFailure {
	var issues []Issue

	if metric != MetricConversion && metric != MetricContinuous {
		issues = append(issues, Issue{
			Code:    IssueUnknownMetricType,
			Message: fmt.Sprintf("unknown metric type %q", metric),
		})
	}

	for _, v := range []struct {
		name   string
		sample Sample
	}{{VariantA, a}, {VariantB, b}} {
		issues = append(issues, validateSample(v.name, v.sample, metric, cfg)...)
	}

	if len(issues) == 0 {
		return nil
	}
	return &ValidationFailure{Issues: issues}
}

func validateSample(variant string, s Sample, metric MetricType, cfg Config) []Issue {
	var issues []Issue
	add := func(code, format string, args ...any) {
		issues = append(issues, Issue{
			Code:    code,
			Variant: variant,
			Message: variant + ": " + fmt.Sprintf(format, args...),
		})
	}

	if s.SampleSize < 0 || s.Conversions < 0 || s.StdDev < 0 {
		add(IssueNegativeValue, "sample_size, conversions and std_dev must not be negative")
	}
	if s.SampleSize < cfg.MinSampleSize {
		add(IssueSampleSizeBelowMinimum, "sample size below minimum (%d < %d)", s.SampleSize, cfg.MinSampleSize)
	}
	if metric == MetricConversion {
		if s.Conversions < cfg.MinConversions {
			add(IssueInsufficientConversions, "insufficient conversions (%d < %d)", s.Conversions, cfg.MinConversions)
		}
		if s.Conversions > s.SampleSize {
			add(IssueConversionsExceedSample, "conversions exceed sample size (%d > %d)", s.Conversions, s.SampleSize)
		}
	}
	return issues
}
