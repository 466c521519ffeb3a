// Package similarity provides pairwise metrics over embedding vectors: cosine similarity,
// Euclidean and Manhattan distance, and dot product, plus the qualitative bands used to
// describe a cosine score to a reader.
//
// Every pairwise function requires vectors of identical length and reports an
// *ErrDimensionMismatch otherwise. A zero-magnitude vector has cosine similarity 0 with
// anything; this is a defined policy, not an error.
package similarity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrDimensionMismatch indicates that two vectors compared together differ in length.
type ErrDimensionMismatch struct {
	Left  int
	Right int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: %d vs %d", e.Left, e.Right)
}

// Metrics bundles every pairwise measurement for one ordered pair of vectors.
type Metrics struct {
	Cosine    float64 `json:"cosine_similarity" yaml:"cosine_similarity"`
	Euclidean float64 `json:"euclidean_distance" yaml:"euclidean_distance"`
	Manhattan float64 `json:"manhattan_distance" yaml:"manhattan_distance"`
	Dot       float64 `json:"dot_product" yaml:"dot_product"`
}

func checkDimensions(a, b []float64) error {
	if len(a) != len(b) {
		return &ErrDimensionMismatch{Left: len(a), Right: len(b)}
	}
	return nil
}

// CosineSimilarity returns dot(a,b) / (‖a‖·‖b‖), or exactly 0 when either magnitude is 0.
func CosineSimilarity(a, b []float64) (float64, error) {
	if err := checkDimensions(a, b); err != nil {
		return 0, err
	}
	return cosine(a, b), nil
}

// cosine assumes equal lengths.
func cosine(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	normA := math.Sqrt(floats.Dot(a, a))
	normB := math.Sqrt(floats.Dot(b, b))
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}

// EuclideanDistance returns sqrt(Σ(aᵢ−bᵢ)²).
func EuclideanDistance(a, b []float64) (float64, error) {
	if err := checkDimensions(a, b); err != nil {
		return 0, err
	}
	if len(a) == 0 {
		return 0, nil
	}
	return floats.Distance(a, b, 2), nil
}

// ManhattanDistance returns Σ|aᵢ−bᵢ|.
func ManhattanDistance(a, b []float64) (float64, error) {
	if err := checkDimensions(a, b); err != nil {
		return 0, err
	}
	if len(a) == 0 {
		return 0, nil
	}
	return floats.Distance(a, b, 1), nil
}

// DotProduct returns Σ aᵢ·bᵢ.
func DotProduct(a, b []float64) (float64, error) {
	if err := checkDimensions(a, b); err != nil {
		return 0, err
	}
	return floats.Dot(a, b), nil
}

// Compute measures all four metrics for a pair in one pass over the dimension check.
func Compute(a, b []float64) (Metrics, error) {
	if err := checkDimensions(a, b); err != nil {
		return Metrics{}, err
	}
	metrics := Metrics{
		Cosine: cosine(a, b),
		Dot:    floats.Dot(a, b),
	}
	if len(a) > 0 {
		metrics.Euclidean = floats.Distance(a, b, 2)
		metrics.Manhattan = floats.Distance(a, b, 1)
	}
	return metrics, nil
}

// GroupSimilarity returns the mean cosine similarity over all unordered pairs.
// Fewer than two vectors yield 1.
func GroupSimilarity(vectors [][]float64) (float64, error) {
	if len(vectors) < 2 {
		return 1, nil
	}

	var total float64
	var pairs int
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			score, err := CosineSimilarity(vectors[i], vectors[j])
			if err != nil {
				return 0, fmt.Errorf("pair (%d,%d): %w", i, j, err)
			}
			total += score
			pairs++
		}
	}
	return total / float64(pairs), nil
}

// Item is a labelled vector taking part in a nearest-match search.
type Item struct {
	Label  string
	Vector []float64
}

// Match is the winning candidate of MostSimilar.
type Match struct {
	Label      string  `json:"label" yaml:"label"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
	Index      int     `json:"index" yaml:"index"`
}

// MostSimilar scans candidates for the highest cosine similarity to target, skipping any
// candidate whose label equals the target's. ok is false when nothing is left to compare.
// Ties keep the earliest candidate.
func MostSimilar(target Item, candidates []Item) (match Match, ok bool, err error) {
	for index, candidate := range candidates {
		if candidate.Label == target.Label {
			continue
		}
		score, err := CosineSimilarity(target.Vector, candidate.Vector)
		if err != nil {
			return Match{}, false, fmt.Errorf("candidate %q: %w", candidate.Label, err)
		}
		if !ok || score > match.Similarity {
			match = Match{Label: candidate.Label, Similarity: score, Index: index}
			ok = true
		}
	}
	return match, ok, nil
}
