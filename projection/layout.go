package projection

import (
	"errors"
	"fmt"
	"math"
)

// Layout names the path that produced a set of reduced coordinates. Only LayoutComputed
// means the reducer actually ran; the others are degraded layouts chosen by policy so that
// callers always receive a structurally valid result.
type Layout string

const (
	// LayoutComputed means the reduction algorithm ran to completion.
	LayoutComputed Layout = "computed"

	// LayoutPlaceholder is used by PCA when there are too few vectors to estimate variance.
	LayoutPlaceholder Layout = "placeholder"

	// LayoutTruncation is the PCA numerical-failure fallback that keeps the leading raw dimensions.
	LayoutTruncation Layout = "truncation"

	// LayoutCircular places points evenly on a circle, used by t-SNE for tiny inputs and failures.
	LayoutCircular Layout = "circular"
)

// placeholderVariance is reported for every component when PCA could not measure variance.
const placeholderVariance = 0.5

var (
	// ErrInvalidTargetDimensions is returned when the requested output is not 2D or 3D.
	ErrInvalidTargetDimensions = errors.New("target dimensions must be 2 or 3")

	// ErrRaggedInput is returned when the input vectors do not share one dimensionality.
	ErrRaggedInput = errors.New("input vectors have inconsistent dimensions")

	// ErrNumericalFailure marks a reduction that produced non-finite values.
	ErrNumericalFailure = errors.New("numerical failure")
)

// validateTargetDimensions guards the reducers against unsupported output sizes.
func validateTargetDimensions(targetDimensions int) error {
	if targetDimensions != 2 && targetDimensions != 3 {
		return fmt.Errorf("%w: got %d", ErrInvalidTargetDimensions, targetDimensions)
	}
	return nil
}

// allVectorsHaveSameDimension checks that every vector has the expected dimensionality.
// Inconsistent dimensions would cause matrix operations to fail or produce incorrect results.
func allVectorsHaveSameDimension(vectors [][]float64, expectedDimension int) bool {
	for _, vector := range vectors {
		if len(vector) != expectedDimension {
			return false
		}
	}
	return true
}

// allValuesFinite reports whether every component of every vector is a real number.
func allValuesFinite(vectors [][]float64) bool {
	for _, vector := range vectors {
		for _, value := range vector {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return false
			}
		}
	}
	return true
}

// createPlaceholderLayout places point i at (i, 0[, 0]).
func createPlaceholderLayout(numberOfVectors, targetDimensions int) [][]float64 {
	coords := make([][]float64, numberOfVectors)
	for vectorIndex := range coords {
		coords[vectorIndex] = make([]float64, targetDimensions)
		coords[vectorIndex][0] = float64(vectorIndex)
	}
	return coords
}

// createTruncationLayout provides a simple projection when PCA fails.
// It uses the first two raw dimensions of each vector as x and y. This is a naive
// approach but ensures we always return some visualization rather than failing completely.
// Absent or non-finite components become 0, and so does the third axis when requested.
func createTruncationLayout(embeddingVectors [][]float64, targetDimensions int) [][]float64 {
	coords := make([][]float64, len(embeddingVectors))
	for vectorIndex, vector := range embeddingVectors {
		coords[vectorIndex] = make([]float64, targetDimensions)
		for componentIndex := 0; componentIndex < min(targetDimensions, 2); componentIndex++ {
			coords[vectorIndex][componentIndex] = getVectorComponentOrZero(vector, componentIndex)
		}
	}
	return coords
}

// getVectorComponentOrZero safely retrieves a component from a vector,
// returning 0.0 if the index is out of bounds or the value is not finite.
func getVectorComponentOrZero(vector []float64, componentIndex int) float64 {
	if componentIndex >= len(vector) {
		return 0.0
	}
	value := vector[componentIndex]
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0.0
	}
	return value
}

// createCircularLayout spreads points evenly around a circle of the given radius, starting
// at angle 0 and moving counter-clockwise. The third coordinate, when requested, is 0.
func createCircularLayout(numberOfPoints, targetDimensions int, radius float64) [][]float64 {
	coords := make([][]float64, numberOfPoints)
	for pointIndex := range coords {
		angle := 2 * math.Pi * float64(pointIndex) / float64(numberOfPoints)
		coords[pointIndex] = make([]float64, targetDimensions)
		coords[pointIndex][0] = radius * math.Cos(angle)
		coords[pointIndex][1] = radius * math.Sin(angle)
	}
	return coords
}

// uniformVariance returns the placeholder explained-variance vector.
func uniformVariance(targetDimensions int) []float64 {
	variance := make([]float64, targetDimensions)
	for componentIndex := range variance {
		variance[componentIndex] = placeholderVariance
	}
	return variance
}
