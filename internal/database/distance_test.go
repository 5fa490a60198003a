package database

import (
	"errors"
	"math"
	"testing"
)

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"pythagorean", []float32{0, 0}, []float32{3, 4}, 5},
		{"single axis", []float32{1}, []float32{4}, 3},
		{"both empty", []float32{}, []float32{}, 0},
		{"negative components", []float32{-1, -1}, []float32{1, 1}, 2 * math.Sqrt2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EuclideanDistance(tc.a, tc.b)
			if err != nil {
				t.Fatalf("EuclideanDistance returned error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("EuclideanDistance = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestEuclideanDistance_Symmetry(t *testing.T) {
	a := []float32{0.5, -1.25, 3.75, 0.125}
	b := []float32{2.5, 0.25, -0.75, 1.625}

	ab, err := EuclideanDistance(a, b)
	if err != nil {
		t.Fatalf("EuclideanDistance(a, b) returned error: %v", err)
	}
	ba, err := EuclideanDistance(b, a)
	if err != nil {
		t.Fatalf("EuclideanDistance(b, a) returned error: %v", err)
	}

	if ab != ba {
		t.Errorf("distance not symmetric: d(a,b)=%f d(b,a)=%f", ab, ba)
	}
	if ab < 0 {
		t.Errorf("distance is negative: %f", ab)
	}
}

func TestEuclideanDistance_DimensionMismatch(t *testing.T) {
	_, err := EuclideanDistance([]float32{1, 2, 3}, []float32{1, 2})
	if err == nil {
		t.Fatal("expected error for mismatched lengths, got nil")
	}

	var dm *ErrDimensionMismatch
	if !errors.As(err, &dm) {
		t.Fatalf("expected ErrDimensionMismatch, got %T: %v", err, err)
	}
	if dm.Expected != 3 || dm.Actual != 2 {
		t.Errorf("mismatch fields = (%d, %d), want (3, 2)", dm.Expected, dm.Actual)
	}
	if !IsDimensionMismatch(err) {
		t.Error("IsDimensionMismatch returned false")
	}
}
