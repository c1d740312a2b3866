package engine

import (
	"math"
	"strconv"
)

// FormatNumber renders a result for display: exactly integral values print
// without a fractional part, everything else with shortest round-trip
// precision. Presentation only; the evaluator hands back bare floats.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
