package pca

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestReducer_TransformKnownDirection(t *testing.T) {
	t.Parallel()
	// Three points on the line y=x: the single principal direction is
	// (1,1)/sqrt(2), sign-normalized positive, so each projection is
	// x_centered*sqrt(2).
	data := []float64{9, 9, 10, 10, 11, 11}
	r := New()
	if err := r.Fit(data, 2, 3); err != nil {
		t.Fatalf("fit data set: %v", err)
	}
	got, err := r.Transform(1)
	if err != nil {
		t.Fatalf("compute Transform: %v", err)
	}
	expected := []float64{-math.Sqrt2, 0, math.Sqrt2}
	if len(got) != len(expected) {
		t.Fatalf("compute Transform length, got: %v, expected: %v", len(got), len(expected))
	}
	for i := range expected {
		if !almostEqual(got[i], expected[i]) {
			t.Errorf("compute Transform, got: %v, expected: %v", got, expected)
			break
		}
	}
}

func TestReducer_TransformPreservesNorm(t *testing.T) {
	t.Parallel()
	// The third coordinate is constant, so the centered data has rank 2
	// and projecting on 2 components is a pure rotation: the total
	// squared norm must be preserved.
	data := []float64{
		1, 2, 7,
		4, 0, 7,
		2, 5, 7,
		8, 1, 7,
		3, 3, 7,
	}
	dim, size := 3, 5
	r := New()
	if err := r.Fit(data, dim, size); err != nil {
		t.Fatalf("fit data set: %v", err)
	}
	got, err := r.Transform(2)
	if err != nil {
		t.Fatalf("compute Transform: %v", err)
	}
	if len(got) != 2*size {
		t.Fatalf("compute Transform length, got: %v, expected: %v", len(got), 2*size)
	}

	var projectedNorm float64
	for _, v := range got {
		projectedNorm += v * v
	}
	var centeredNorm float64
	for j := 0; j < dim; j++ {
		var mean float64
		for i := 0; i < size; i++ {
			mean += data[i*dim+j]
		}
		mean /= float64(size)
		for i := 0; i < size; i++ {
			d := data[i*dim+j] - mean
			centeredNorm += d * d
		}
	}
	if math.Abs(projectedNorm-centeredNorm) > 1e-6 {
		t.Errorf("rotation must preserve the squared norm, got: %v, expected: %v", projectedNorm, centeredNorm)
	}
}

func TestReducer_TransformComponentsOrthogonal(t *testing.T) {
	t.Parallel()
	data := []float64{
		2.5, 2.4, 1.1,
		0.5, 0.7, 0.9,
		2.2, 2.9, 1.8,
		1.9, 2.2, 0.4,
		3.1, 3.0, 2.3,
		2.3, 2.7, 1.5,
		2.0, 1.6, 0.8,
		1.0, 1.1, 1.9,
	}
	dim, size := 3, 8
	r := New()
	if err := r.Fit(data, dim, size); err != nil {
		t.Fatalf("fit data set: %v", err)
	}
	got, err := r.Transform(2)
	if err != nil {
		t.Fatalf("compute Transform: %v", err)
	}
	// Projections along distinct principal directions are uncorrelated:
	// the dot product of any two output rows is zero.
	first, second := got[:size], got[size:]
	var dot float64
	for i := 0; i < size; i++ {
		dot += first[i] * second[i]
	}
	if math.Abs(dot) > 1e-6 {
		t.Errorf("projected components must be orthogonal, got dot product: %v", dot)
	}
}

func TestReducer_TransformMaximizesVariance(t *testing.T) {
	t.Parallel()
	// Ten 2-D points around (10,10): the 1-D projection variance must be
	// at least the variance of either raw coordinate.
	data := []float64{
		9.1, 9.0,
		10.2, 10.4,
		11.0, 10.9,
		9.5, 9.7,
		10.8, 10.5,
		9.0, 9.2,
		10.1, 10.0,
		11.2, 11.0,
		9.8, 10.1,
		10.3, 10.2,
	}
	dim, size := 2, 10
	r := New()
	if err := r.Fit(data, dim, size); err != nil {
		t.Fatalf("fit data set: %v", err)
	}
	got, err := r.Transform(1)
	if err != nil {
		t.Fatalf("compute Transform: %v", err)
	}
	if len(got) != size {
		t.Fatalf("compute Transform length, got: %v, expected: %v", len(got), size)
	}

	xs := make([]float64, size)
	ys := make([]float64, size)
	for i := 0; i < size; i++ {
		xs[i] = data[i*dim]
		ys[i] = data[i*dim+1]
	}
	projVar := stat.Variance(got, nil)
	if projVar < stat.Variance(xs, nil)-tolerance || projVar < stat.Variance(ys, nil)-tolerance {
		t.Errorf(
			"projection variance must dominate any raw coordinate, got: %v, coordinates: %v, %v",
			projVar, stat.Variance(xs, nil), stat.Variance(ys, nil))
	}
}

func TestReducer_TransformClampsK(t *testing.T) {
	t.Parallel()
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 1, 3, 5}
	dim, size := 3, 4
	for _, k := range []int{0, -2, 3, 10} {
		r := New()
		if err := r.Fit(data, dim, size); err != nil {
			t.Fatalf("fit data set: %v", err)
		}
		got, err := r.Transform(k)
		if err != nil {
			t.Fatalf("compute Transform with k=%d: %v", k, err)
		}
		if len(got) != (dim-1)*size {
			t.Errorf("out-of-range k must clamp to dim-1, k=%d, got: %v values, expected: %v", k, len(got), (dim-1)*size)
		}
	}
}

func TestReducer_Refit(t *testing.T) {
	t.Parallel()
	data := []float64{1, 2, 4, 3, 2, 5, 7, 1, 3, 3, 6, 2}
	r := New()
	if err := r.Fit(data, 3, 4); err != nil {
		t.Fatalf("fit data set: %v", err)
	}
	first, err := r.Transform(2)
	if err != nil {
		t.Fatalf("compute Transform: %v", err)
	}
	if err := r.Fit(data, 3, 4); err != nil {
		t.Fatalf("refit data set: %v", err)
	}
	second, err := r.Transform(2)
	if err != nil {
		t.Fatalf("compute Transform: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("refit with identical input must match, got: %v, expected: %v", second, first)
		}
	}
}

func TestReducer_Errors(t *testing.T) {
	t.Parallel()
	r := New()
	if _, err := r.Transform(1); !errors.Is(err, ErrNotFitted) {
		t.Errorf("transform without data, got: %v, expected: %v", err, ErrNotFitted)
	}
	tests := []struct {
		name        string
		data        []float64
		dim         int
		size        int
		expectedErr error
	}{
		{name: "empty_data", data: nil, dim: 2, size: 1, expectedErr: ErrEmptyInput},
		{name: "zero_dim", data: []float64{1, 2}, dim: 0, size: 1, expectedErr: ErrEmptyInput},
		{name: "zero_size", data: []float64{1, 2}, dim: 2, size: 0, expectedErr: ErrEmptyInput},
		{name: "mismatch", data: []float64{1, 2, 3}, dim: 2, size: 2, expectedErr: ErrSizeMismatch},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := New().Fit(test.data, test.dim, test.size); !errors.Is(err, test.expectedErr) {
				t.Errorf("compute Fit, got: %v, expected: %v", err, test.expectedErr)
			}
		})
	}
}
