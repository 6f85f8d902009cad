package abtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestRun_ConversionScenario(t *testing.T) {
	out := Run(Sample{SampleSize: 1000, Conversions: 100}, Sample{SampleSize: 1000, Conversions: 130}, MetricConversion)

	require.True(t, out.Valid())
	res := out.Result
	require.NotNil(t, res.Proportion)
	assert.Nil(t, res.Mean)

	assert.InDelta(t, 0.10, res.Proportion.RateA, 1e-12)
	assert.InDelta(t, 0.13, res.Proportion.RateB, 1e-12)
	assert.InDelta(t, 30.0, res.RelativeLift, 1e-9)
	assert.InDelta(t, 0.115, res.Proportion.PooledRate, 1e-12)
	assert.InDelta(t, 2.1027, res.Proportion.ZScore, 1e-3)

	assert.Less(t, res.PValue, 0.05)
	assert.Greater(t, res.PValue, 0.03)
	assert.True(t, res.IsSignificant)
	assert.Equal(t, VariantB, res.Winner)

	assert.Equal(t, EffectCohensH, res.EffectSize.Measure)
	assert.Contains(t, []Magnitude{MagnitudeSmall, MagnitudeNegligible}, res.EffectSize.Magnitude)
	assert.InDelta(t, 0.0942, res.EffectSize.Value, 1e-3)

	ci := res.ConfidenceInterval
	assert.Equal(t, 95, ci.Level)
	assert.InDelta(t, 0.03, ci.Difference, 1e-12)
	assert.Greater(t, ci.Lower, 0.0)
	assert.InDelta(t, ci.Difference-ci.Lower, ci.Upper-ci.Difference, 1e-12)
	assert.InDelta(t, 1.96*math.Sqrt(0.1*0.9/1000+0.13*0.87/1000), ci.Upper-ci.Difference, 1e-12)
}

func TestRun_IdenticalRates(t *testing.T) {
	out := Run(Sample{SampleSize: 1000, Conversions: 100}, Sample{SampleSize: 500, Conversions: 50}, MetricConversion)

	require.True(t, out.Valid())
	assert.Equal(t, 0.0, out.Result.Proportion.ZScore)
	assert.InDelta(t, 1.0, out.Result.PValue, 1e-5)
	assert.Greater(t, out.Result.PValue, 0.05)
	assert.False(t, out.Result.IsSignificant)
	assert.Equal(t, WinnerNone, out.Result.Winner)
	assert.Equal(t, MagnitudeNegligible, out.Result.EffectSize.Magnitude)
}

func TestRun_VariantAWins(t *testing.T) {
	out := Run(Sample{SampleSize: 2000, Conversions: 400}, Sample{SampleSize: 2000, Conversions: 300}, MetricConversion)

	require.True(t, out.Valid())
	assert.True(t, out.Result.IsSignificant)
	assert.Equal(t, VariantA, out.Result.Winner)
	assert.Less(t, out.Result.RelativeLift, 0.0)
}

func TestRun_ValidationFailure(t *testing.T) {
	out := Run(Sample{SampleSize: 10, Conversions: 1}, Sample{SampleSize: 1000, Conversions: 130}, MetricConversion)

	require.False(t, out.Valid())
	assert.Nil(t, out.Result)
	require.NotNil(t, out.Failure)

	assert.True(t, out.Failure.Has(IssueSampleSizeBelowMinimum))
	assert.True(t, out.Failure.Has(IssueInsufficientConversions))
	require.Len(t, out.Failure.Issues, 2)
	for _, issue := range out.Failure.Issues {
		assert.Equal(t, VariantA, issue.Variant)
	}
	assert.Contains(t, out.Failure.Issues[0].Message, "sample size below minimum")
	assert.Contains(t, out.Failure.Issues[1].Message, "insufficient conversions")
	assert.Contains(t, out.Failure.Error(), "and 1 more")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	ok := Sample{SampleSize: 500, Conversions: 50, Mean: 10, StdDev: 2}

	tests := []struct {
		name   string
		a      Sample
		metric MetricType
		codes  []string
	}{
		{"valid conversion", ok, MetricConversion, nil},
		{"valid continuous", ok, MetricContinuous, nil},
		{"continuous ignores conversions", Sample{SampleSize: 500, Mean: 3}, MetricContinuous, nil},
		{"negative size", Sample{SampleSize: -1, Conversions: 0}, MetricContinuous,
			[]string{IssueNegativeValue, IssueSampleSizeBelowMinimum}},
		{"negative std dev", Sample{SampleSize: 500, StdDev: -1}, MetricContinuous,
			[]string{IssueNegativeValue}},
		{"conversions exceed size", Sample{SampleSize: 100, Conversions: 150}, MetricConversion,
			[]string{IssueConversionsExceedSample}},
		{"unknown metric", ok, MetricType("ratio"), []string{IssueUnknownMetricType}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failure := Validate(tt.a, ok, tt.metric, cfg)
			if tt.codes == nil {
				assert.Nil(t, failure)
				return
			}
			require.NotNil(t, failure)
			got := make([]string, 0, len(failure.Issues))
			for _, issue := range failure.Issues {
				got = append(got, issue.Code)
			}
			assert.Equal(t, tt.codes, got)
		})
	}
}

func TestRun_MeanTest(t *testing.T) {
	a := Sample{SampleSize: 100, Mean: 50, StdDev: 10}
	b := Sample{SampleSize: 100, Mean: 55, StdDev: 10}

	out := Run(a, b, MetricContinuous)

	require.True(t, out.Valid())
	res := out.Result
	require.NotNil(t, res.Mean)
	assert.Nil(t, res.Proportion)

	assert.Equal(t, 198, res.Mean.DegreesOfFreedom)
	assert.InDelta(t, 10.0, res.Mean.PooledStdDev, 1e-12)
	assert.InDelta(t, 5/(10*math.Sqrt(0.02)), res.Mean.TStatistic, 1e-9)
	assert.Less(t, res.PValue, 0.001)
	assert.True(t, res.IsSignificant)
	assert.Equal(t, VariantB, res.Winner)
	assert.InDelta(t, 10.0, res.RelativeLift, 1e-9)

	assert.Equal(t, EffectCohensD, res.EffectSize.Measure)
	assert.InDelta(t, 0.5, res.EffectSize.Value, 1e-12)
	assert.Equal(t, MagnitudeMedium, res.EffectSize.Magnitude)

	assert.InDelta(t, 5.0, res.ConfidenceInterval.Difference, 1e-12)
	assert.InDelta(t, 5-1.96*math.Sqrt(2), res.ConfidenceInterval.Lower, 1e-9)
	assert.InDelta(t, 5+1.96*math.Sqrt(2), res.ConfidenceInterval.Upper, 1e-9)
}

func TestRun_MeanTestZeroVariance(t *testing.T) {
	a := Sample{SampleSize: 100, Mean: 5}
	b := Sample{SampleSize: 100, Mean: 7}

	out := Run(a, b, MetricContinuous)

	require.True(t, out.Valid())
	assert.Equal(t, 0.0, out.Result.Mean.TStatistic)
	assert.Equal(t, 0.0, out.Result.EffectSize.Value)
	assert.False(t, out.Result.IsSignificant)
	assert.Equal(t, WinnerNone, out.Result.Winner)
}

func TestRunWithConfig_Alpha(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Alpha = 0.01

	out := RunWithConfig(Sample{SampleSize: 1000, Conversions: 100}, Sample{SampleSize: 1000, Conversions: 130}, MetricConversion, cfg)

	require.True(t, out.Valid())
	assert.False(t, out.Result.IsSignificant)
	assert.Equal(t, WinnerNone, out.Result.Winner)
}

func TestClassifyMagnitude_Boundaries(t *testing.T) {
	tests := []struct {
		value float64
		want  Magnitude
	}{
		{0, MagnitudeNegligible},
		{0.1999, MagnitudeNegligible},
		{0.2, MagnitudeSmall},
		{-0.2, MagnitudeSmall},
		{0.4999, MagnitudeSmall},
		{0.5, MagnitudeMedium},
		{0.7999, MagnitudeMedium},
		{0.8, MagnitudeLarge},
		{-2.5, MagnitudeLarge},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyMagnitude(tt.value), "value=%v", tt.value)
	}
}

func TestTwoTailedPValue_MatchesNormal(t *testing.T) {
	for z := 0.0; z <= 6.0; z += 0.25 {
		exact := 2 * distuv.UnitNormal.Survival(z)
		assert.InDelta(t, exact, TwoTailedPValue(z), 1e-6, "z=%v", z)
		assert.Equal(t, TwoTailedPValue(z), TwoTailedPValue(-z))
	}
}

func TestTwoTailedPValue_Extreme(t *testing.T) {
	assert.Equal(t, ExtremePValue, TwoTailedPValue(6.01))
	assert.Equal(t, ExtremePValue, TwoTailedPValue(-40))
	assert.InDelta(t, 1.0, TwoTailedPValue(0), 1e-5)
}

func TestCohensH(t *testing.T) {
	e := CohensH(0.5, 0.5)
	assert.Equal(t, 0.0, e.Value)

	e = CohensH(0.2, 0.5)
	assert.InDelta(t, 2*(math.Asin(math.Sqrt(0.5))-math.Asin(math.Sqrt(0.2))), e.Value, 1e-12)
	assert.Equal(t, MagnitudeMedium, e.Magnitude)
}

func TestInterval(t *testing.T) {
	ci := Interval(1, 0.5, ConfidenceZ)
	assert.InDelta(t, 0.02, ci.Lower, 1e-12)
	assert.InDelta(t, 1.98, ci.Upper, 1e-12)
	assert.Equal(t, 95, ci.Level)
	assert.Equal(t, 99, Interval(0, 1, 2.576).Level)
	assert.Equal(t, 90, Interval(0, 1, 1.645).Level)
	assert.Equal(t, 68, Interval(0, 1, 1).Level)
}

func TestParseMetricType(t *testing.T) {
	m, err := ParseMetricType("Conversion")
	require.NoError(t, err)
	assert.Equal(t, MetricConversion, m)

	m, err = ParseMetricType("  ")
	require.NoError(t, err)
	assert.Equal(t, MetricConversion, m)

	_, err = ParseMetricType("ratio")
	assert.Error(t, err)
}
