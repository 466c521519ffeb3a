package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Identical", []float64{1, 0, 0, 0}, []float64{1, 0, 0, 0}, 1},
		{"Orthogonal", []float64{1, 0, 0, 0}, []float64{0, 1, 0, 0}, 0},
		{"Opposite", []float64{1, 2}, []float64{-1, -2}, -1},
		{"Scaled", []float64{1, 2, 3}, []float64{2, 4, 6}, 1},
		{"ZeroLeft", []float64{0, 0, 0}, []float64{1, 2, 3}, 0},
		{"ZeroRight", []float64{1, 2, 3}, []float64{0, 0, 0}, 0},
		{"BothZero", []float64{0, 0}, []float64{0, 0}, 0},
		{"Empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestCosineSimilarity_ExactForUnitAxes(t *testing.T) {
	same, err := CosineSimilarity([]float64{1, 0, 0, 0}, []float64{1, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0, same)

	orthogonal, err := CosineSimilarity([]float64{1, 0, 0, 0}, []float64{0, 1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, orthogonal)
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	pairs := [][2][]float64{
		{{0.3, -1.2, 4.5}, {2.2, 0.1, -0.7}},
		{{1e-3, 5, 9}, {7, 7, 7}},
		{{-2, -3, 0.5}, {0, 0, 0}},
	}
	for _, pair := range pairs {
		ab, err := CosineSimilarity(pair[0], pair[1])
		require.NoError(t, err)
		ba, err := CosineSimilarity(pair[1], pair[0])
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	}
}

func TestEuclideanDistance(t *testing.T) {
	got, err := EuclideanDistance([]float64{0, 0, 0}, []float64{3, 4, 0})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got, 1e-12)

	self, err := EuclideanDistance([]float64{1.5, -2, 8}, []float64{1.5, -2, 8})
	require.NoError(t, err)
	assert.Equal(t, 0.0, self)
}

func TestManhattanDistance(t *testing.T) {
	got, err := ManhattanDistance([]float64{1, -1, 2}, []float64{-1, 1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 6.0, got, 1e-12)
}

func TestDotProduct_Bilinear(t *testing.T) {
	a := []float64{1, 2, -3}
	b := []float64{0.5, -4, 2}
	c := []float64{3, 1, 1}
	const alpha = 2.5

	sum := make([]float64, len(a))
	scaled := make([]float64, len(a))
	for i := range a {
		sum[i] = a[i] + b[i]
		scaled[i] = alpha * a[i]
	}

	sumDot, err := DotProduct(sum, c)
	require.NoError(t, err)
	ac, err := DotProduct(a, c)
	require.NoError(t, err)
	bc, err := DotProduct(b, c)
	require.NoError(t, err)
	assert.InDelta(t, ac+bc, sumDot, 1e-12)

	scaledDot, err := DotProduct(scaled, c)
	require.NoError(t, err)
	assert.InDelta(t, alpha*ac, scaledDot, 1e-12)

	cSum, err := DotProduct(c, sum)
	require.NoError(t, err)
	assert.InDelta(t, sumDot, cSum, 1e-12)
}

func TestDimensionMismatch(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 2}

	funcs := map[string]Func{
		"cosine":    CosineSimilarity,
		"euclidean": EuclideanDistance,
		"manhattan": ManhattanDistance,
		"dot":       DotProduct,
	}
	for name, fn := range funcs {
		t.Run(name, func(t *testing.T) {
			_, err := fn(a, b)
			var mismatch *ErrDimensionMismatch
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, 3, mismatch.Left)
			assert.Equal(t, 2, mismatch.Right)
		})
	}

	_, err := Compute(a, b)
	var mismatch *ErrDimensionMismatch
	assert.True(t, errors.As(err, &mismatch))

	_, err = GroupSimilarity([][]float64{a, b})
	assert.True(t, errors.As(err, &mismatch))

	_, _, err = MostSimilar(Item{Label: "a", Vector: a}, []Item{{Label: "b", Vector: b}})
	assert.True(t, errors.As(err, &mismatch))
}

func TestCompute(t *testing.T) {
	metrics, err := Compute([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, metrics.Cosine)
	assert.InDelta(t, math.Sqrt2, metrics.Euclidean, 1e-12)
	assert.InDelta(t, 2.0, metrics.Manhattan, 1e-12)
	assert.Equal(t, 0.0, metrics.Dot)
}

func TestGroupSimilarity(t *testing.T) {
	single, err := GroupSimilarity([][]float64{{0.2, 0.4}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, single)

	empty, err := GroupSimilarity(nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, empty)

	// pairs: (a,b)=0, (a,c)=1, (b,c)=0
	mean, err := GroupSimilarity([][]float64{{1, 0}, {0, 1}, {1, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, mean, 1e-12)
}

func TestMostSimilar(t *testing.T) {
	target := Item{Label: "cat", Vector: []float64{1, 0.1}}
	candidates := []Item{
		{Label: "cat", Vector: []float64{1, 0.1}},
		{Label: "dog", Vector: []float64{0.9, 0.2}},
		{Label: "car", Vector: []float64{0, 1}},
	}

	match, ok, err := MostSimilar(target, candidates)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dog", match.Label)
	assert.Equal(t, 1, match.Index)
}

func TestMostSimilar_None(t *testing.T) {
	target := Item{Label: "only", Vector: []float64{1, 2}}

	_, ok, err := MostSimilar(target, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = MostSimilar(target, []Item{target})
	require.NoError(t, err)
	assert.False(t, ok)
}
