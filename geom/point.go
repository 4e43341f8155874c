package geom

import (
	"math"
)

// Point is a feature vector of fixed dimension.
type Point []float64

func New(vec []float64) Point {
	return vec
}

func (v Point) Dimensions() int {
	return len(v)
}

func (v Point) Dim(idx int) float64 {
	return v[idx]
}

func (v Point) Points() []float64 {
	return v
}

func (v Point) Copy() Point {
	var v1 = make(Point, len(v))
	copy(v1, v)
	return v1
}

func (v Point) Scale(value float64) {
	length := len(v)
	for i := 0; i < length; i++ {
		v[i] *= value
	}
}

func (v Point) Zero() {
	for i := range v {
		v[i] = 0.0
	}
}

func (v Point) Magnitude() float64 {
	result := 0.0
	for i := range v {
		result += v[i] * v[i]
	}
	return math.Sqrt(result)
}

func (v Point) Sum() float64 {
	var s float64
	for i := range v {
		s += v[i]
	}
	return s
}

func (v Point) Mean() float64 {
	return v.Sum() / float64(len(v))
}

func (v Point) Max() float64 {
	var max = -math.MaxFloat64
	for i := range v {
		if v[i] > max {
			max = v[i]
		}
	}
	return max
}

func (v Point) Min() float64 {
	var min = math.MaxFloat64
	for i := range v {
		if v[i] < min {
			min = v[i]
		}
	}
	return min
}

func (v Point) SizeEqual(vec Point) bool {
	return len(v) == len(vec)
}

func (v Point) Equal(vec Point) bool {
	if len(v) != len(vec) {
		return false
	}
	for i, value := range v {
		if vec[i] != value {
			return false
		}
	}
	return true
}
