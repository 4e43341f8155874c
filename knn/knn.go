// Package knn implements a brute-force k-nearest-neighbor classifier over
// an in-memory set of labeled feature vectors.
//
//	clf := knn.New[string]()
//	_ = clf.Load([]float64{1, 101, 5, 89, 108, 5, 115, 8}, 2, []string{"A", "A", "B", "B"}, 4)
//	label, _ := clf.Classify([]float64{10, 202}, 3)
package knn

import (
	"fmt"

	"github.com/go-patrec/patrec/geom"
	"github.com/go-patrec/patrec/pkg/pqueue"
)

var (
	ErrEmptyInput       = fmt.Errorf("data, dim, labels and size must all be non empty")
	ErrSizeMismatch     = fmt.Errorf("flat data length does not match dim*size")
	ErrNotFitted        = fmt.Errorf("no data set loaded")
	ErrInsufficientData = fmt.Errorf("k is out of range for the loaded data set")
)

func WithDistanceFunc(fn geom.DistanceFunc) Option {
	return func(o *options) {
		o.distFunc = fn
	}
}

type Option func(*options)

type options struct {
	distFunc geom.DistanceFunc
}

type labeledPoint[L comparable] struct {
	point geom.Point
	label L
}

// New creates a classifier for labels of type L. The distance metric is
// Euclidean unless overridden with WithDistanceFunc.
func New[L comparable](opts ...Option) *Classifier[L] {
	o := options{distFunc: geom.EuclideanDistance}
	for _, opt := range opts {
		opt(&o)
	}
	return &Classifier[L]{opts: o}
}

type Classifier[L comparable] struct {
	opts    options
	dataSet []labeledPoint[L]
}

// Load replaces the classifier's data set with size points of dim values
// each, sliced from the flat buffer and paired with labels. The input is
// copied; prior state is left untouched when an error is returned.
func (c *Classifier[L]) Load(data []float64, dim int, labels []L, size int) error {
	if len(data) == 0 || dim <= 0 || len(labels) == 0 || size <= 0 {
		return ErrEmptyInput
	}
	if len(data) != dim*size || len(labels) != size {
		return ErrSizeMismatch
	}
	dataSet := make([]labeledPoint[L], 0, size)
	for i, idx := 0, 0; i < size; i, idx = i+1, idx+dim {
		dataSet = append(dataSet, labeledPoint[L]{
			point: geom.New(data[idx : idx+dim]).Copy(),
			label: labels[i],
		})
	}
	c.dataSet = dataSet
	return nil
}

// Len returns the number of loaded points.
func (c *Classifier[L]) Len() int {
	return len(c.dataSet)
}

// Classify returns the majority label among the k loaded points closest to
// query. Points at equal distance are ranked in load order. When two labels
// tie on the vote, the one appearing first in nearest-first order wins.
func (c *Classifier[L]) Classify(query []float64, k int) (L, error) {
	var none L
	if len(c.dataSet) == 0 {
		return none, ErrNotFitted
	}
	if k < 1 || k > len(c.dataSet) {
		return none, ErrInsufficientData
	}
	pq := pqueue.New[L](pqueue.WithCap(uint(k)))
	for i := range c.dataSet {
		distance, err := c.opts.distFunc(query, c.dataSet[i].point.Points())
		if err != nil {
			return none, fmt.Errorf(
				"unable to compute distance between %v and %v: %w",
				query, c.dataSet[i].point.Points(),
				err,
			)
		}
		pq.Push(c.dataSet[i].label, distance)
	}
	neighbors := pq.PopAll()
	if k == 1 {
		return neighbors[0], nil
	}
	return vote(neighbors), nil
}

// vote counts the neighbor labels and returns the first label, in
// nearest-first order, that reaches the winning count.
func vote[L comparable](labels []L) L {
	voter := make(map[L]int, len(labels))
	count := 0
	for _, label := range labels {
		voter[label]++
		if voter[label] > count {
			count = voter[label]
		}
	}
	for _, label := range labels {
		if voter[label] == count {
			return label
		}
	}
	var none L
	return none
}
