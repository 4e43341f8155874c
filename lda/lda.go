// Package lda implements Linear Discriminant Analysis for dimensionality
// reduction: a linear projection maximizing between-class separation
// relative to within-class spread.
//
// Fit groups the loaded points by label; Transform builds the within and
// between class scatter matrices, solves the Sw⁻¹·Sb eigenproblem and
// projects every class onto the leading k eigenvectors.
package lda

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyInput      = fmt.Errorf("data, dim, labels and size must all be non empty")
	ErrSizeMismatch    = fmt.Errorf("flat data length does not match dim*size")
	ErrNotFitted       = fmt.Errorf("no data set loaded")
	ErrSingularScatter = fmt.Errorf("within-class scatter matrix is singular")
	ErrDecompose       = fmt.Errorf("unable to factorize scatter matrices")
	ErrLowDimension    = fmt.Errorf("data dimension is too small to reduce")
)

func New[L comparable]() *Reducer[L] {
	return &Reducer[L]{}
}

type Reducer[L comparable] struct {
	classes []*mat.Dense // dim x class size, column per point
	labels  []L          // first-seen order, parallel to classes
	dim     int
	size    int
}

// Fit groups size points of dim values each by label, replacing any
// previously fitted state. Prior state is left untouched when an error is
// returned.
func (r *Reducer[L]) Fit(data []float64, dim int, labels []L, size int) error {
	if len(data) == 0 || dim <= 0 || len(labels) == 0 || size <= 0 {
		return ErrEmptyInput
	}
	if len(data) != dim*size || len(labels) != size {
		return ErrSizeMismatch
	}

	grouped := make(map[L][]float64)
	order := make([]L, 0, len(labels))
	for i, idx := 0, 0; i < size; i, idx = i+1, idx+dim {
		if _, ok := grouped[labels[i]]; !ok {
			order = append(order, labels[i])
		}
		grouped[labels[i]] = append(grouped[labels[i]], data[idx:idx+dim]...)
	}

	classes := make([]*mat.Dense, 0, len(order))
	for _, label := range order {
		flat := grouped[label]
		cols := len(flat) / dim
		class := mat.NewDense(dim, cols, nil)
		for i, idx := 0, 0; i < cols; i, idx = i+1, idx+dim {
			for j := 0; j < dim; j++ {
				class.Set(j, i, flat[idx+j])
			}
		}
		classes = append(classes, class)
	}

	r.classes = classes
	r.labels = order
	r.dim = dim
	r.size = size
	return nil
}

// Labels returns the distinct labels in first-seen order, which is also
// the order of the per-class blocks in the Transform output.
func (r *Reducer[L]) Labels() []L {
	out := make([]L, len(r.labels))
	copy(out, r.labels)
	return out
}

// Transform projects every class's points onto the k leading eigenvectors
// of Sw⁻¹·Sb and returns the class blocks concatenated in first-seen label
// order, each flattened row-major by component, k*size values in total.
// A k outside (0, dim) is clamped to dim-1. Transform returns
// ErrSingularScatter when the within-class scatter cannot be inverted,
// which happens when some class has fewer points than dimensions.
func (r *Reducer[L]) Transform(k int) ([]float64, error) {
	if len(r.classes) == 0 {
		return nil, ErrNotFitted
	}

	means, totalMean := r.classMeans()
	sw := r.scatterWithin(means)
	sb := r.scatterBetween(means, totalMean)

	var swInv mat.Dense
	if err := swInv.Inverse(sw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularScatter, err)
	}
	var w mat.Dense
	w.Mul(&swInv, sb)

	var eig mat.Eigen
	if ok := eig.Factorize(&w, mat.EigenRight); !ok {
		return nil, ErrDecompose
	}
	vectors := sortedEigenVectors(&eig, r.dim)

	if k <= 0 || k >= r.dim {
		k = r.dim - 1
	}
	if k < 1 {
		return nil, ErrLowDimension
	}

	subVectors := mat.NewDense(r.dim, k, nil)
	for j := 0; j < k; j++ {
		subVectors.SetCol(j, vectors[j])
	}

	result := make([]float64, 0, k*r.size)
	for _, class := range r.classes {
		var projected mat.Dense
		projected.Mul(subVectors.T(), class)
		rows, _ := projected.Dims()
		for i := 0; i < rows; i++ {
			result = append(result, projected.RawRowView(i)...)
		}
	}
	return result, nil
}

// classMeans returns the per-class mean vectors and the size-weighted
// global mean.
func (r *Reducer[L]) classMeans() ([][]float64, []float64) {
	means := make([][]float64, len(r.classes))
	totalMean := make([]float64, r.dim)
	totalNum := 0
	for i, class := range r.classes {
		_, cols := class.Dims()
		sum := make([]float64, r.dim)
		for j := 0; j < r.dim; j++ {
			sum[j] = floats.Sum(class.RawRowView(j))
		}
		floats.Add(totalMean, sum)
		totalNum += cols

		mean := make([]float64, r.dim)
		copy(mean, sum)
		floats.Scale(1/float64(cols), mean)
		means[i] = mean
	}
	floats.Scale(1/float64(totalNum), totalMean)
	return means, totalMean
}

// scatterWithin sums the per-class covariance-normalized scatter
// matrices. Classes with a single point have no spread and contribute
// nothing.
func (r *Reducer[L]) scatterWithin(means [][]float64) *mat.Dense {
	sw := mat.NewDense(r.dim, r.dim, nil)
	for i, class := range r.classes {
		_, cols := class.Dims()
		if cols < 2 {
			continue
		}
		centered := mat.DenseCopyOf(class)
		for j := 0; j < r.dim; j++ {
			row := centered.RawRowView(j)
			for c := range row {
				row[c] -= means[i][j]
			}
		}
		var scatter mat.Dense
		scatter.Mul(centered, centered.T())
		scatter.Scale(1/float64(cols-1), &scatter)
		sw.Add(sw, &scatter)
	}
	return sw
}

// scatterBetween sums the outer products of the class mean deviations
// from the global mean. Deviations are not weighted by class size, per
// the reference formula.
func (r *Reducer[L]) scatterBetween(means [][]float64, totalMean []float64) *mat.Dense {
	sb := mat.NewDense(r.dim, r.dim, nil)
	for i := range r.classes {
		diff := make([]float64, r.dim)
		copy(diff, means[i])
		floats.Sub(diff, totalMean)
		var scatter mat.Dense
		scatter.Outer(1, mat.NewVecDense(r.dim, diff), mat.NewVecDense(r.dim, diff))
		sb.Add(sb, &scatter)
	}
	return sb
}

// sortedEigenVectors extracts the real parts of the eigenvectors ordered
// by descending real eigenvalue. Imaginary components from the
// non-symmetric solve carry no meaning here and are discarded.
func sortedEigenVectors(eig *mat.Eigen, dim int) [][]float64 {
	values := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return real(values[idx[a]]) > real(values[idx[b]])
	})

	vectors := make([][]float64, len(idx))
	for rank, j := range idx {
		col := make([]float64, dim)
		for i := 0; i < dim; i++ {
			col[i] = real(vecs.At(i, j))
		}
		vectors[rank] = col
	}
	return vectors
}
