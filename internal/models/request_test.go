package models

import (
	"testing"
	"time"

	"github.com/soltixdb/insight/internal/analytics"
	"github.com/soltixdb/insight/internal/analytics/abtest"
	"github.com/soltixdb/insight/internal/analytics/trend"
)

func TestDescribeRequest_Validate(t *testing.T) {
	if err := (&DescribeRequest{}).Validate(); err == nil {
		t.Error("expected error for missing values")
	}
	if err := (&DescribeRequest{Values: []interface{}{}}).Validate(); err != nil {
		t.Errorf("empty values should be accepted: %v", err)
	}
}

func TestAnomalyRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     AnomalyRequest
		wantErr bool
	}{
		{"empty", AnomalyRequest{}, true},
		{"metric", AnomalyRequest{Metric: "cpu"}, false},
		{"series", AnomalyRequest{Series: analytics.NewSeries([]float64{1})}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrendRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     TrendRequest
		wantErr bool
	}{
		{"empty", TrendRequest{}, true},
		{"periods only", TrendRequest{Periods: []trend.PeriodInput{{Type: trend.PeriodWoW}}}, false},
		{"negative horizon", TrendRequest{Metric: "m", Horizon: -1}, true},
		{"bad as_of", TrendRequest{Metric: "m", AsOf: "last week"}, true},
		{"date as_of", TrendRequest{Metric: "m", AsOf: "2024-03-14"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrendRequest_ParsesAsOf(t *testing.T) {
	req := TrendRequest{Metric: "m", AsOf: "2024-03-14T12:00:00Z"}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	want := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	if !req.AsOfParsed.Equal(want) {
		t.Errorf("AsOfParsed = %v, want %v", req.AsOfParsed, want)
	}
}

func TestCorrelationRequest_Validate(t *testing.T) {
	if err := (&CorrelationRequest{}).Validate(); err == nil {
		t.Error("expected error for empty request")
	}
	req := CorrelationRequest{Series: map[string]analytics.Series{"a": nil}}
	if err := req.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestABTestRequest_Validate(t *testing.T) {
	sample := &abtest.Sample{SampleSize: 100}

	tests := []struct {
		name    string
		req     ABTestRequest
		wantErr bool
	}{
		{"empty", ABTestRequest{}, true},
		{"one arm without experiment", ABTestRequest{VariantA: sample}, true},
		{"both arms inline", ABTestRequest{VariantA: sample, VariantB: sample}, false},
		{"experiment", ABTestRequest{Experiment: "checkout"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
