package models

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/abtest"
	"github.com/soltixdb/insight/internal/analytics/trend"
	"github.com/soltixdb/insight/internal/source"
)

// DescribeRequest carries a raw sample. Entries that are not numbers are
// dropped, so strings and nulls are tolerated.
type DescribeRequest struct {
	Values []interface{} `json:"values"`
}

// Validate validates the describe request
func (r *DescribeRequest) Validate() error {
	if r.Values == nil {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "'values' is required",
		}
	}
	return nil
}

// AnomalyRequest represents an anomaly detection request. Either metric or
// series is required; series wins when both are given.
type AnomalyRequest struct {
	Metric      string           `json:"metric,omitempty"`
	Series      analytics.Series `json:"series,omitempty"`
	Sensitivity string           `json:"sensitivity,omitempty"` // low, medium (default), high
	Methods     []string         `json:"methods,omitempty"`     // zscore, rate_of_change, pattern, iqr
}

// Validate validates the anomaly request
func (r *AnomalyRequest) Validate() error {
	if r.Metric == "" && len(r.Series) == 0 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "either 'metric' or 'series' is required",
		}
	}
	return nil
}

// TrendRequest represents a trend analysis request
type TrendRequest struct {
	Metric      string              `json:"metric,omitempty"`
	Series      analytics.Series    `json:"series,omitempty"`
	Periods     []trend.PeriodInput `json:"periods,omitempty"`
	Comparisons []string            `json:"comparisons,omitempty"` // WoW, MoM, YoY
	AsOf        string              `json:"as_of,omitempty"`
	Horizon     int                 `json:"horizon,omitempty"`

	AsOfParsed time.Time `json:"-"`
}

// Validate validates the trend request and parses as_of
func (r *TrendRequest) Validate() error {
	if r.Metric == "" && len(r.Series) == 0 && len(r.Periods) == 0 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "one of 'metric', 'series' or 'periods' is required",
		}
	}

	if r.Horizon < 0 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "horizon must not be negative",
		}
	}

	if r.AsOf != "" {
		t, ok := source.ParseTimestamp(r.AsOf)
		if !ok {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "as_of must be RFC3339 or YYYY-MM-DD (e.g., 2006-01-02T15:04:05Z)",
			}
		}
		r.AsOfParsed = t
	}

	return nil
}

// CorrelationRequest represents a correlation matrix request. Inline
// series are correlated alongside the named metrics and shadow stored
// metrics of the same name.
type CorrelationRequest struct {
	Metrics   []string                    `json:"metrics,omitempty"`
	Series    map[string]analytics.Series `json:"series,omitempty"`
	Threshold *float64                    `json:"threshold,omitempty"`
}

// Validate validates the correlation request
func (r *CorrelationRequest) Validate() error {
	if len(r.Metrics) == 0 && len(r.Series) == 0 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "'metrics' or 'series' is required",
		}
	}
	return nil
}

// ABTestRequest represents an A/B test request. Missing arms are loaded
// from the experiment.
type ABTestRequest struct {
	Experiment string         `json:"experiment,omitempty"`
	VariantA   *abtest.Sample `json:"variant_a,omitempty"`
	VariantB   *abtest.Sample `json:"variant_b,omitempty"`
	MetricType string         `json:"metric_type,omitempty"` // conversion (default), continuous
}

// Validate validates the A/B test request
func (r *ABTestRequest) Validate() error {
	if r.Experiment == "" && (r.VariantA == nil || r.VariantB == nil) {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "'experiment' is required unless both 'variant_a' and 'variant_b' are given",
		}
	}
	return nil
}
