package utils

import "math"

// LogPopularity returns log(max(n, 1)), so rows with no enrollment contribute zero.
func LogPopularity(n int64) float64 {
	return math.Log(float64(max(n, 1)))
}

// MinMax returns the smallest and largest values of xs. Both are zero for an empty slice.
func MinMax(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}

// Round rounds x half away from zero to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
