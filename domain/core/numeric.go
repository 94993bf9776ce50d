package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

// ToNumber converts a raw cell value to a float64. The second return value
// reports whether the cell held a usable number: empty strings, unparseable
// text, NaN and infinities all come back as (0, false). Downstream callers
// that need a hard zero default go through NumberOr instead of letting a
// missing value leak into arithmetic.
func ToNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

// NumberOr parses a raw cell value, substituting fallback when it is
// missing or unparseable.
func NumberOr(raw string, fallback float64) float64 {
	if val, ok := ToNumber(raw); ok {
		return val
	}
	return fallback
}

// Median returns the middle element (or mean of the two middle elements) of
// the sample. The input slice is never mutated. An empty sample is an error.
func Median(sample []float64) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	// stats.Median sorts a copy internally, so the caller's slice survives.
	return stats.Median(sample)
}

// ApproxEqual reports whether a and b agree within eps. Exact equality
// short-circuits so that infinities compare equal to themselves.
func ApproxEqual(a, b, eps float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= eps
}

// Round4 rounds to 4 decimal places. Derived-metric comparisons round both
// sides before applying the 1e-4 tolerance to absorb float accumulation in
// the upstream metric computation.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
