package util

import (
	"math"

	"golang.org/x/exp/constraints"
)

func Max[A constraints.Ordered](a A, b A) A {
	if a > b {
		return a
	}
	return b
}

// Round3 rounds to 3 decimal places, the precision of the JSON output.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
