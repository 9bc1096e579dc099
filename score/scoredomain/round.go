package scoredomain

import "strconv"

// RoundTo rounds x to prec decimal places, half to even on the exact binary
// value of x. 2.5 becomes 2 and 0.125 becomes 0.12 at two decimals.
func RoundTo(x float64, prec int) float64 {
	if prec < 0 {
		prec = 0
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', prec, 64), 64)
	if err != nil {
		// FormatFloat output always parses; only NaN/Inf get here
		return x
	}
	return r
}
