// Package pqueue provides a priority-ordered queue with an optional
// capacity bound. Pushes keep the queue sorted by priority; with a cap of
// k only the k best-priority items are retained, which is the selection
// primitive behind k-nearest-neighbor lookups. Ordering is stable: items
// with equal priority keep their insertion order.
package pqueue

import (
	"sort"
)

func WithOrderAsc() Option {
	return func(o *options) {
		o.order = orderAsc
	}
}

func WithOrderDesc() Option {
	return func(o *options) {
		o.order = orderDesc
	}
}

func WithCap(size uint) Option {
	return func(o *options) {
		o.cap = int(size)
	}
}

type Option func(*options)

type options struct {
	order order
	cap   int
}

type order uint8

const (
	orderAsc order = iota
	orderDesc
)

type item[T any] struct {
	value T
	prior float64
}

func New[T any](opts ...Option) *Queue[T] {
	o := options{order: orderAsc, cap: -1}
	for _, opt := range opts {
		opt(&o)
	}
	return &Queue[T]{opts: o}
}

type Queue[T any] struct {
	opts  options
	items []item[T]
}

func (q *Queue[T]) PopAll() []T {
	pulled := make([]T, len(q.items))
	for i := range q.items {
		pulled[i] = q.items[i].value
	}
	q.items = q.items[:0]
	return pulled
}

func (q *Queue[T]) Head() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	x := q.items[0]
	q.items = q.items[1:]
	return x.value, true
}

func (q *Queue[T]) Tail() (T, bool) {
	var zero T
	l := len(q.items) - 1
	if l < 0 {
		return zero, false
	}
	x := q.items[l]
	q.items = q.items[:l]
	return x.value, true
}

func (q *Queue[T]) Push(val T, priority float64) {
	q.items = append(q.items, item[T]{value: val, prior: priority})
	sort.SliceStable(q.items, q.less)
	if q.opts.cap < 0 {
		return
	}
	if q.opts.cap < len(q.items) {
		q.items = q.items[:q.opts.cap]
	}
}

func (q *Queue[T]) Cap() int { return q.opts.cap }

func (q *Queue[T]) Len() int { return len(q.items) }

func (q *Queue[T]) Seek(idx int) (T, float64) {
	item := q.items[idx]
	return item.value, item.prior
}

func (q *Queue[T]) less(i, j int) bool {
	if q.opts.order == orderAsc {
		return q.items[i].prior < q.items[j].prior
	}
	return q.items[i].prior > q.items[j].prior
}
