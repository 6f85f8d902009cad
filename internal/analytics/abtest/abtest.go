// Package abtest runs two-sample hypothesis tests over A/B experiment
// summaries: a pooled two-proportion z-test for conversion metrics and a
// pooled two-sample t-test for continuous metrics.
package abtest

import (
	"fmt"
	"math"
	"strings"
)

// MetricType selects the test
type MetricType string

const (
	MetricConversion MetricType = "conversion"
	MetricContinuous MetricType = "continuous"
)

// ParseMetricType parses a metric type name. An empty name is conversion.
func ParseMetricType(s string) (MetricType, error) {
	switch MetricType(strings.ToLower(strings.TrimSpace(s))) {
	case "", MetricConversion:
		return MetricConversion, nil
	case MetricContinuous:
		return MetricContinuous, nil
	default:
		return "", fmt.Errorf("unknown metric type: %q (supported: conversion, continuous)", s)
	}
}

// Variant labels
const (
	VariantA    = "variant_a"
	VariantB    = "variant_b"
	WinnerNone  = "none"
	ConfidenceZ = 1.96
)

// Sample summarizes one experiment arm. Conversion tests read Conversions;
// continuous tests read Mean and StdDev.
type Sample struct {
	SampleSize  int     `json:"sample_size"`
	Conversions int     `json:"conversions,omitempty"`
	Mean        float64 `json:"mean,omitempty"`
	StdDev      float64 `json:"std_dev,omitempty"`
}

// Rate is Conversions/SampleSize, or 0 for an empty sample.
func (s Sample) Rate() float64 {
	if s.SampleSize <= 0 {
		return 0
	}
	return float64(s.Conversions) / float64(s.SampleSize)
}

// Config holds the fixed test parameters. Treat it as immutable.
type Config struct {
	MinSampleSize  int     `json:"min_sample_size"`
	MinConversions int     `json:"min_conversions"`
	Alpha          float64 `json:"alpha"`
	ConfidenceZ    float64 `json:"confidence_z"`
}

// DefaultConfig returns the standard parameters: 100 per arm, 10
// conversions per arm, alpha 0.05 and a 95% interval.
func DefaultConfig() Config {
	return Config{
		MinSampleSize:  100,
		MinConversions: 10,
		Alpha:          0.05,
		ConfidenceZ:    ConfidenceZ,
	}
}

// ProportionTest is the result of the two-proportion z-test.
type ProportionTest struct {
	ZScore       float64 `json:"z_score"`
	PValue       float64 `json:"p_value"`
	RateA        float64 `json:"rate_a"`
	RateB        float64 `json:"rate_b"`
	PooledRate   float64 `json:"pooled_rate"`
	RelativeLift float64 `json:"relative_lift"`
}

// MeanTest is the result of the pooled two-sample t-test.
type MeanTest struct {
	TStatistic       float64 `json:"t_statistic"`
	DegreesOfFreedom int     `json:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"`
	MeanA            float64 `json:"mean_a"`
	MeanB            float64 `json:"mean_b"`
	PooledStdDev     float64 `json:"pooled_std_dev"`
	RelativeLift     float64 `json:"relative_lift"`
}

// Result of a test that ran. Exactly one of Proportion and Mean is set.
type Result struct {
	MetricType         MetricType         `json:"metric_type"`
	Proportion         *ProportionTest    `json:"proportion_test,omitempty"`
	Mean               *MeanTest          `json:"mean_test,omitempty"`
	PValue             float64            `json:"p_value"`
	IsSignificant      bool               `json:"is_significant"`
	Winner             string             `json:"winner"`
	RelativeLift       float64            `json:"relative_lift"`
	EffectSize         EffectSize         `json:"effect_size"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
}

// Outcome is either a Result or a ValidationFailure.
type Outcome struct {
	Result  *Result            `json:"result,omitempty"`
	Failure *ValidationFailure `json:"validation_failure,omitempty"`
}

// Valid reports whether the test ran.
func (o Outcome) Valid() bool {
	return o.Failure == nil && o.Result != nil
}

// Run tests b against a with DefaultConfig.
func Run(a, b Sample, metric MetricType) Outcome {
	return RunWithConfig(a, b, metric, DefaultConfig())
}

// RunWithConfig validates both samples and, when they pass, runs the test
// for metric. Validation problems are returned as a failure, not an error.
func RunWithConfig(a, b Sample, metric MetricType, cfg Config) Outcome {
	if failure := Validate(a, b, metric, cfg); failure != nil {
		return Outcome{Failure: failure}
	}

	var res Result
	switch metric {
	case MetricContinuous:
		res = meanTest(a, b, cfg)
	default:
		res = proportionTest(a, b, cfg)
	}
	return Outcome{Result: &res}
}

func proportionTest(a, b Sample, cfg Config) Result {
	nA, nB := float64(a.SampleSize), float64(b.SampleSize)
	rateA, rateB := a.Rate(), b.Rate()

	var pooled, se, ciSE float64
	if nA > 0 && nB > 0 {
		pooled = float64(a.Conversions+b.Conversions) / (nA + nB)
		se = math.Sqrt(pooled * (1 - pooled) * (1/nA + 1/nB))
		ciSE = math.Sqrt(rateA*(1-rateA)/nA + rateB*(1-rateB)/nB)
	}

	var z float64
	if se > 0 {
		z = (rateB - rateA) / se
	}
	p := TwoTailedPValue(z)
	lift := relativeLift(rateB, rateA)

	return Result{
		MetricType: MetricConversion,
		Proportion: &ProportionTest{
			ZScore:       z,
			PValue:       p,
			RateA:        rateA,
			RateB:        rateB,
			PooledRate:   pooled,
			RelativeLift: lift,
		},
		PValue:             p,
		IsSignificant:      p < cfg.Alpha,
		Winner:             winner(p < cfg.Alpha, rateB-rateA),
		RelativeLift:       lift,
		EffectSize:         CohensH(rateA, rateB),
		ConfidenceInterval: Interval(rateB-rateA, ciSE, cfg.ConfidenceZ),
	}
}

func meanTest(a, b Sample, cfg Config) Result {
	nA, nB := float64(a.SampleSize), float64(b.SampleSize)
	df := a.SampleSize + b.SampleSize - 2

	diff := b.Mean - a.Mean

	var pooledStd, t, ciSE float64
	if df > 0 && nA > 0 && nB > 0 {
		pooledVar := ((nA-1)*a.StdDev*a.StdDev + (nB-1)*b.StdDev*b.StdDev) / float64(df)
		pooledStd = math.Sqrt(pooledVar)
		if se := pooledStd * math.Sqrt(1/nA+1/nB); se > 0 {
			t = diff / se
		}
		ciSE = math.Sqrt(a.StdDev*a.StdDev/nA + b.StdDev*b.StdDev/nB)
	}
	p := TwoTailedPValue(t)
	lift := relativeLift(b.Mean, a.Mean)

	return Result{
		MetricType: MetricContinuous,
		Mean: &MeanTest{
			TStatistic:       t,
			DegreesOfFreedom: df,
			PValue:           p,
			MeanA:            a.Mean,
			MeanB:            b.Mean,
			PooledStdDev:     pooledStd,
			RelativeLift:     lift,
		},
		PValue:             p,
		IsSignificant:      p < cfg.Alpha,
		Winner:             winner(p < cfg.Alpha, diff),
		RelativeLift:       lift,
		EffectSize:         CohensD(a.Mean, b.Mean, pooledStd),
		ConfidenceInterval: Interval(diff, ciSE, cfg.ConfidenceZ),
	}
}

// relativeLift returns (b-a)/|a|*100, or 0 when a is 0.
func relativeLift(b, a float64) float64 {
	if a == 0 {
		return 0
	}
	return (b - a) / math.Abs(a) * 100
}

func winner(significant bool, diff float64) string {
	switch {
	case !significant || diff == 0:
		return WinnerNone
	case diff > 0:
		return VariantB
	default:
		return VariantA
	}
}
