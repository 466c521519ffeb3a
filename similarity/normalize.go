package similarity

import (
	"gonum.org/v1/gonum/floats"
)

// NormalizeVector returns a unit-length copy of v. A zero-norm vector is copied unchanged.
func NormalizeVector(v []float64) []float64 {
	normalized := make([]float64, len(v))
	norm := floats.Norm(v, 2)
	if norm == 0 {
		copy(normalized, v)
		return normalized
	}
	return floats.ScaleTo(normalized, 1/norm, v)
}

// Normalize rescales every vector to unit length without touching the inputs.
func Normalize(vectors [][]float64) [][]float64 {
	if vectors == nil {
		return nil
	}
	normalized := make([][]float64, len(vectors))
	for i, v := range vectors {
		normalized[i] = NormalizeVector(v)
	}
	return normalized
}
