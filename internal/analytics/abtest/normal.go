package abtest

import "math"

// Abramowitz and Stegun 26.2.17 constants.
const (
	asP      = 0.2316419
	asPDF    = 0.3989423
	asB1     = 0.3193815
	asB2     = -0.3565638
	asB3     = 1.781478
	asB4     = -1.821256
	asB5     = 1.330274
	asCutoff = 6.0

	// ExtremePValue is returned for |z| beyond the approximation cutoff.
	ExtremePValue = 0.0001
)

// TwoTailedPValue approximates P(|Z| >= |z|) for a standard normal Z with the
// Abramowitz and Stegun polynomial. The result is not clamped to [0, 1] and
// z = 0 gives approximately, not exactly, 1. Used for both z and t statistics.
func TwoTailedPValue(z float64) float64 {
	az := math.Abs(z)
	if az > asCutoff {
		return ExtremePValue
	}
	return 2 * upperTail(az)
}

// upperTail approximates P(Z >= x) for x >= 0.
func upperTail(x float64) float64 {
	t := 1 / (1 + asP*x)
	d := asPDF * math.Exp(-x*x/2)
	return d * t * (asB1 + t*(asB2+t*(asB3+t*(asB4+t*asB5))))
}
