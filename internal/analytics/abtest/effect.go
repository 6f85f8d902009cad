package abtest

import "math"

// Magnitude band of an effect size
type Magnitude string

const (
	MagnitudeNegligible Magnitude = "negligible"
	MagnitudeSmall      Magnitude = "small"
	MagnitudeMedium     Magnitude = "medium"
	MagnitudeLarge      Magnitude = "large"
)

// Effect size measures
const (
	EffectCohensH = "cohens_h"
	EffectCohensD = "cohens_d"
)

// EffectSize is a standardized effect with its magnitude band.
type EffectSize struct {
	Measure   string    `json:"measure"`
	Value     float64   `json:"value"`
	Magnitude Magnitude `json:"magnitude"`
}

// ClassifyMagnitude bands |value|: <0.2 negligible, <0.5 small, <0.8 medium.
func ClassifyMagnitude(value float64) Magnitude {
	switch abs := math.Abs(value); {
	case abs < 0.2:
		return MagnitudeNegligible
	case abs < 0.5:
		return MagnitudeSmall
	case abs < 0.8:
		return MagnitudeMedium
	default:
		return MagnitudeLarge
	}
}

// CohensH is 2*(asin(sqrt(pB)) - asin(sqrt(pA))).
func CohensH(pA, pB float64) EffectSize {
	h := 2 * (math.Asin(math.Sqrt(pB)) - math.Asin(math.Sqrt(pA)))
	return EffectSize{Measure: EffectCohensH, Value: h, Magnitude: ClassifyMagnitude(h)}
}

// CohensD is (meanB-meanA)/pooledStd, or 0 when pooledStd is 0.
func CohensD(meanA, meanB, pooledStd float64) EffectSize {
	var d float64
	if pooledStd > 0 {
		d = (meanB - meanA) / pooledStd
	}
	return EffectSize{Measure: EffectCohensD, Value: d, Magnitude: ClassifyMagnitude(d)}
}

// ConfidenceInterval around the B-minus-A difference.
type ConfidenceInterval struct {
	Difference float64 `json:"difference"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Level      int     `json:"level"`
}

// Interval returns difference +/- z*se. Level is the two-sided normal
// coverage of z in percent, 95 for z = 1.96.
func Interval(difference, se, z float64) ConfidenceInterval {
	margin := z * se
	return ConfidenceInterval{
		Difference: difference,
		Lower:      difference - margin,
		Upper:      difference + margin,
		Level:      levelFor(z),
	}
}

func levelFor(z float64) int {
	return int(math.Round((1 - 2*upperTail(z)) * 100))
}
