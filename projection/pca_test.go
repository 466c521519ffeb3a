package projection

import (
	"errors"
	"math"
	"testing"
)

func TestPCA_SingleVectorPlaceholder(t *testing.T) {
	for _, k := range []int{2, 3} {
		result, err := PCA([][]float64{{1, 2, 3, 4}}, k)
		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", k, err)
		}
		if result.Layout != LayoutPlaceholder {
			t.Errorf("k=%d: expected placeholder layout, got %s", k, result.Layout)
		}
		if len(result.Coords) != 1 || len(result.Coords[0]) != k {
			t.Fatalf("k=%d: unexpected coords shape %v", k, result.Coords)
		}
		for _, c := range result.Coords[0] {
			if c != 0 {
				t.Errorf("k=%d: expected origin, got %v", k, result.Coords[0])
			}
		}
		if len(result.ExplainedVariance) != k {
			t.Fatalf("k=%d: expected %d variance values, got %d", k, k, len(result.ExplainedVariance))
		}
		for _, v := range result.ExplainedVariance {
			if v != 0.5 {
				t.Errorf("k=%d: expected placeholder variance 0.5, got %v", k, v)
			}
		}
	}
}

func TestPCA_EmptyInput(t *testing.T) {
	result, err := PCA(nil, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Coords) != 0 {
		t.Errorf("expected no coords, got %v", result.Coords)
	}
}

func TestPCA_InvalidTargetDimensions(t *testing.T) {
	_, err := PCA([][]float64{{1, 2}, {3, 4}}, 4)
	if !errors.Is(err, ErrInvalidTargetDimensions) {
		t.Errorf("expected ErrInvalidTargetDimensions, got %v", err)
	}
}

func TestPCA_RaggedInput(t *testing.T) {
	_, err := PCA([][]float64{{1, 2, 3}, {1, 2}}, 2)
	if !errors.Is(err, ErrRaggedInput) {
		t.Errorf("expected ErrRaggedInput, got %v", err)
	}
}

func TestPCA_IdenticalInputsProjectIdentically(t *testing.T) {
	vectors := [][]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{1, 0, 0, 0},
	}

	result, err := PCA(vectors, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Layout != LayoutComputed {
		t.Fatalf("expected computed layout, got %s", result.Layout)
	}
	if len(result.Coords) != 3 {
		t.Fatalf("expected 3 points, got %d", len(result.Coords))
	}
	for d := 0; d < 2; d++ {
		if result.Coords[0][d] != result.Coords[2][d] {
			t.Errorf("expected a and c to coincide, got %v and %v", result.Coords[0], result.Coords[2])
		}
	}
	if result.Coords[0][0] == result.Coords[1][0] {
		t.Errorf("expected a and b to be separated on the first component, got %v and %v", result.Coords[0], result.Coords[1])
	}
}

func TestPCA_ExplainedVarianceOrdered(t *testing.T) {
	vectors := [][]float64{
		{0, 0, 0},
		{10, 1, 0.1},
		{20, -1, 0},
		{30, 2, -0.1},
		{40, 0, 0.05},
	}

	result, err := PCA(vectors, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var total float64
	for i, v := range result.ExplainedVariance {
		if v < 0 || v > 1 {
			t.Errorf("variance ratio %d out of range: %v", i, v)
		}
		if i > 0 && v > result.ExplainedVariance[i-1] {
			t.Errorf("variance ratios not descending: %v", result.ExplainedVariance)
		}
		total += v
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("expected three components of 3D data to explain everything, got %v", total)
	}
	if result.ExplainedVariance[0] < 0.99 {
		t.Errorf("expected the first component to dominate, got %v", result.ExplainedVariance)
	}
}

func TestPCA_MissingComponentsAreZero(t *testing.T) {
	result, err := PCA([][]float64{{0, 0}, {1, 1}}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Layout != LayoutComputed {
		t.Fatalf("expected computed layout, got %s", result.Layout)
	}
	for i, point := range result.Coords {
		if len(point) != 3 {
			t.Fatalf("point %d: expected 3 coordinates, got %d", i, len(point))
		}
		if point[2] != 0 {
			t.Errorf("point %d: expected 0 on the missing axis, got %v", i, point[2])
		}
	}
	if result.ExplainedVariance[2] != 0 {
		t.Errorf("expected missing component to explain nothing, got %v", result.ExplainedVariance)
	}
}

func TestPCA_IdenticalVectorsHaveNoVariance(t *testing.T) {
	result, err := PCA([][]float64{{1, 2, 3}, {1, 2, 3}, {1, 2, 3}}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range result.ExplainedVariance {
		if v != 0 {
			t.Errorf("expected zero variance ratios, got %v", result.ExplainedVariance)
		}
	}
	for i, point := range result.Coords {
		for _, c := range point {
			if math.IsNaN(c) {
				t.Errorf("point %d has NaN coordinates", i)
			}
		}
	}
}

func TestPCA_NonFiniteFallsBackToTruncation(t *testing.T) {
	vectors := [][]float64{
		{1, math.NaN(), 3},
		{4, 5, math.Inf(1)},
	}

	result, err := PCA(vectors, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Layout != LayoutTruncation {
		t.Fatalf("expected truncation layout, got %s", result.Layout)
	}

	expected := [][]float64{{1, 0, 0}, {4, 5, 0}}
	for i := range expected {
		for d := range expected[i] {
			if result.Coords[i][d] != expected[i][d] {
				t.Errorf("point %d: expected %v, got %v", i, expected[i], result.Coords[i])
			}
		}
	}
}
