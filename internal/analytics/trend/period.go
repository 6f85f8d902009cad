package trend

import (
	"fmt"
	"math"
	"strings"

	"github.com/soltixdb/insight/internal/analytics/descriptive"
)

// PeriodType is a period-over-period comparison window.
type PeriodType string

const (
	PeriodWoW PeriodType = "WoW"
	PeriodMoM PeriodType = "MoM"
	PeriodYoY PeriodType = "YoY"
)

// Days returns the nominal window length of the period.
func (p PeriodType) Days() int {
	switch p {
	case PeriodWoW:
		return 7
	case PeriodMoM:
		return 30
	case PeriodYoY:
		return 365
	default:
		return 0
	}
}

// ParsePeriodType accepts WoW, MoM and YoY in any case.
func ParsePeriodType(s string) (PeriodType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wow":
		return PeriodWoW, nil
	case "mom":
		return PeriodMoM, nil
	case "yoy":
		return PeriodYoY, nil
	default:
		return "", fmt.Errorf("unknown period type: %q (supported: WoW, MoM, YoY)", s)
	}
}

// Direction of a period-over-period change
type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// Strength of a period-over-period change
type Strength string

const (
	StrengthWeak     Strength = "weak"
	StrengthModerate Strength = "moderate"
	StrengthStrong   Strength = "strong"
)

// Classification bands, in percent.
const (
	StableBandPct      = 5.0
	StrongChangePct    = 15.0
	SignificantPctBand = 10.0
)

// PeriodInput is the current-period aggregate and the prior-period aggregate
// it is compared against. The prior value comes from the caller or a data
// source, never from the analyzed series.
type PeriodInput struct {
	Type          PeriodType `json:"period_type"`
	CurrentValue  float64    `json:"current_value"`
	PreviousValue float64    `json:"previous_value"`
}

// TrendResult is a classified period-over-period comparison.
type TrendResult struct {
	PeriodType     PeriodType `json:"period_type"`
	CurrentValue   float64    `json:"current_value"`
	PreviousValue  float64    `json:"previous_value"`
	AbsoluteChange float64    `json:"absolute_change"`
	PercentChange  float64    `json:"percent_change"`
	Direction      Direction  `json:"direction"`
	Strength       Strength   `json:"strength"`
	IsSignificant  bool       `json:"is_significant"`
}

// Compare classifies a single period comparison.
func Compare(in PeriodInput) TrendResult {
	pct := PercentChange(in.CurrentValue, in.PreviousValue)

	direction := DirectionStable
	switch {
	case pct > StableBandPct:
		direction = DirectionIncreasing
	case pct < -StableBandPct:
		direction = DirectionDecreasing
	}

	strength := StrengthWeak
	if direction != DirectionStable {
		strength = StrengthModerate
		if math.Abs(pct) > StrongChangePct {
			strength = StrengthStrong
		}
	}

	return TrendResult{
		PeriodType:     in.Type,
		CurrentValue:   in.CurrentValue,
		PreviousValue:  in.PreviousValue,
		AbsoluteChange: descriptive.Finite(in.CurrentValue - in.PreviousValue),
		PercentChange:  pct,
		Direction:      direction,
		Strength:       strength,
		IsSignificant:  math.Abs(pct) > SignificantPctBand || strength == StrengthStrong,
	}
}

// PercentChange returns (current-previous)/|previous|*100, or 0 when previous
// is 0. Overflow clamps to ±math.MaxFloat64.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return descriptive.Finite((current - previous) / math.Abs(previous) * 100)
}
