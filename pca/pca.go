// Package pca implements Principal Component Analysis: a variance
// maximizing linear projection of a point set onto its top singular
// directions.
//
// The reducer keeps the centered data matrix built by Fit; Transform
// decomposes it with a thin SVD and projects onto the leading k
// components. Decomposing the centered matrix directly is preferred over
// eigendecomposing the covariance, which squares the condition number.
package pca

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptyInput   = fmt.Errorf("data, dim and size must all be non empty")
	ErrSizeMismatch = fmt.Errorf("flat data length does not match dim*size")
	ErrNotFitted    = fmt.Errorf("no data set loaded")
	ErrDecompose    = fmt.Errorf("unable to factorize data set")
	ErrLowDimension = fmt.Errorf("data dimension is too small to reduce")
)

func New() *Reducer {
	return &Reducer{}
}

type Reducer struct {
	dataSet *mat.Dense // dim x size, centered, column per point
	dim     int
	size    int
}

// Fit loads size points of dim values each from the flat point-major
// buffer and centers them by subtracting the per-coordinate mean. Prior
// state is left untouched when an error is returned.
func (r *Reducer) Fit(data []float64, dim, size int) error {
	if len(data) == 0 || dim <= 0 || size <= 0 {
		return ErrEmptyInput
	}
	if len(data) != dim*size {
		return ErrSizeMismatch
	}
	dataSet := mat.NewDense(dim, size, nil)
	for i, idx := 0, 0; i < size; i, idx = i+1, idx+dim {
		for j := 0; j < dim; j++ {
			dataSet.Set(j, i, data[idx+j])
		}
	}
	for j := 0; j < dim; j++ {
		row := dataSet.RawRowView(j)
		mean := stat.Mean(row, nil)
		for i := range row {
			row[i] -= mean
		}
	}
	r.dataSet = dataSet
	r.dim = dim
	r.size = size
	return nil
}

// Transform projects the centered data set onto its k leading principal
// directions and returns the projected coordinates flattened row-major by
// component, k*size values. A k outside (0, dim) is clamped to dim-1.
func (r *Reducer) Transform(k int) ([]float64, error) {
	if r.dataSet == nil {
		return nil, ErrNotFitted
	}

	var svd mat.SVD
	if ok := svd.Factorize(r.dataSet, mat.SVDThin); !ok {
		return nil, ErrDecompose
	}
	var u mat.Dense
	svd.UTo(&u)

	// Rows of components are the principal directions, ordered by
	// descending singular value.
	components := mat.DenseCopyOf(u.T())
	normalizeSigns(components)

	rows, _ := components.Dims()
	if k <= 0 || k >= r.dim {
		k = r.dim - 1
	}
	if k > rows {
		k = rows
	}
	if k < 1 {
		return nil, ErrLowDimension
	}

	var projected mat.Dense
	projected.Mul(components.Slice(0, k, 0, r.dim), r.dataSet)
	return flatten(&projected), nil
}

// normalizeSigns flips each direction so that its largest-magnitude
// coordinate is positive, removing the sign ambiguity of the SVD.
func normalizeSigns(components *mat.Dense) {
	rows, _ := components.Dims()
	for i := 0; i < rows; i++ {
		row := components.RawRowView(i)
		max := 0
		for j := range row {
			if math.Abs(row[j]) > math.Abs(row[max]) {
				max = j
			}
		}
		if row[max] < 0 {
			for j := range row {
				row[j] = -row[j]
			}
		}
	}
}

func flatten(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		out = append(out, m.RawRowView(i)...)
	}
	return out
}
