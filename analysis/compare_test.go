package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alDuncanson/embscope/similarity"
)

func TestCompare(t *testing.T) {
	comparison, err := New().Compare(context.Background(),
		Record{Label: "left", Vector: []float64{1, 0}},
		Record{Label: "right", Vector: []float64{1, 1}},
	)
	require.NoError(t, err)

	assert.Equal(t, "left", comparison.LabelA)
	assert.Equal(t, "right", comparison.LabelB)
	assert.InDelta(t, 0.7071, comparison.Metrics.Cosine, 1e-4)
	assert.Equal(t, 1.0, comparison.Metrics.Euclidean)
	assert.Equal(t, 1.0, comparison.Metrics.Manhattan)
	assert.Equal(t, 1.0, comparison.Metrics.Dot)
	assert.Equal(t, "similar", comparison.Interpretation)
	assert.Equal(t, similarity.ConfidenceMedium, comparison.Confidence)
}

func TestCompare_DimensionMismatch(t *testing.T) {
	_, err := New().Compare(context.Background(),
		Record{Label: "a", Vector: []float64{1, 0}},
		Record{Label: "b", Vector: []float64{1}},
	)
	require.ErrorIs(t, err, ErrInvalidInput)

	var mismatch *similarity.ErrDimensionMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 2, mismatch.Left)
	assert.Equal(t, 1, mismatch.Right)
}

func TestCompare_NonFinite(t *testing.T) {
	_, err := New().Compare(context.Background(),
		Record{Label: "a", Vector: []float64{1, 0}},
		Record{Label: "b", Vector: []float64{math.NaN(), 1}},
	)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "non-finite")
}

func TestCompareTexts(t *testing.T) {
	comparison, err := New(WithEmbedder(fakeEmbedder())).CompareTexts(context.Background(), "cat", "dog")
	require.NoError(t, err)
	assert.Greater(t, comparison.Metrics.Cosine, 0.9)
	assert.Equal(t, "cat", comparison.LabelA)
}
