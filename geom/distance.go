package geom

import (
	"fmt"
	"math"
)

var ErrDimNotEqual = fmt.Errorf("vectors dimension is not equal")

// DistanceFunc computes the distance between two vectors of equal dimension.
type DistanceFunc func(vec, vec1 []float64) (float64, error)

type DistanceFuncType string

const (
	DistanceFuncTypeEuclidean DistanceFuncType = "EUCLIDEAN"
	DistanceFuncTypeChebyshev DistanceFuncType = "CHEBYSHEV"
	DistanceFuncTypeManhattan DistanceFuncType = "MANHATTAN"
)

func DistanceFuncFor(d DistanceFuncType) (DistanceFunc, error) {
	switch d {
	case DistanceFuncTypeChebyshev:
		return ChebyshevDistance, nil
	case DistanceFuncTypeEuclidean:
		return EuclideanDistance, nil
	case DistanceFuncTypeManhattan:
		return ManhattanDistance, nil
	default:
		return nil, fmt.Errorf("unknown distance function: %s", d)
	}
}

func EuclideanDistance(vec, vec1 []float64) (float64, error) {
	var d float64
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}

	for i := 0; i < len(vec); i++ {
		d += (vec[i] - vec1[i]) * (vec[i] - vec1[i])
	}
	return math.Sqrt(d), nil
}

func ChebyshevDistance(vec, vec1 []float64) (float64, error) {
	var absDistance, distance float64
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	for i := 0; i < len(vec1); i++ {
		absDistance = math.Abs(vec[i] - vec1[i])
		if distance < absDistance {
			distance = absDistance
		}
	}
	return distance, nil
}

func ManhattanDistance(vec, vec1 []float64) (float64, error) {
	var distance float64
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	distance = 0
	for i := 0; i < len(vec); i++ {
		distance += math.Abs(vec[i] - vec1[i])
	}
	return distance, nil
}
