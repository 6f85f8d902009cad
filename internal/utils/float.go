package utils

import (
	"encoding/json"
	"math"
)

// ToFloat64 converts various numeric types to float64.
// Returns the converted value and true if successful, or 0 and false if conversion fails.
// Supports: float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32,
// uint64 and json.Number
func ToFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToFloat64Slice converts a slice of interface{} to a slice of float64.
// Entries that are not numeric, or are NaN or infinite, are skipped. Returns
// the converted slice and the original indices of the kept values.
func ToFloat64Slice(values []interface{}) ([]float64, []int) {
	result := make([]float64, 0, len(values))
	indices := make([]int, 0, len(values))

	for i, v := range values {
		f, ok := ToFloat64(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		result = append(result, f)
		indices = append(indices, i)
	}

	return result, indices
}

// IsNumeric checks if a value can be converted to float64.
func IsNumeric(v interface{}) bool {
	_, ok := ToFloat64(v)
	return ok
}
