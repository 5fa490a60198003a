package database

import "math"

// EuclideanDistance computes the L2 distance between two encodings.
// Accumulation happens in float64 so float32 inputs round-trip cleanly.
// The vectors must have the same length; two zero-length vectors have
// distance 0.
func EuclideanDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &ErrDimensionMismatch{Expected: len(a), Actual: len(b)}
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return math.Sqrt(sum), nil
}
