// Package projection provides dimensionality reduction and coarse grouping for
// high-dimensional embedding vectors.
//
// # Principal Component Analysis (PCA) Overview
//
// PCA reduces high-dimensional data (like 768-dimensional sentence embeddings) down to
// two or three dimensions while preserving as much variance as possible. It finds the
// directions (principal components) along which the data varies the most and projects
// every vector onto the strongest of them.
//
// # Why We Use Singular Value Decomposition (SVD)
//
// While PCA can be computed by finding eigenvectors of the covariance matrix, SVD is numerically
// more stable and efficient. For a centered data matrix X, the right singular vectors (V) give us
// the principal components directly, without needing to compute X^T * X explicitly.
//
// The mathematical relationship is:
//   - X = U * Σ * V^T  (SVD decomposition)
//   - The columns of V are the eigenvectors of the covariance matrix X^T * X / (n-1)
//   - The eigenvalues are σ²/(n-1), so σᵢ² / Σσ² is the fraction of variance component i explains
//   - Projecting data: X_projected = X * V[:, 0:k] gives us the k-dimensional representation
//
// # Degraded Layouts
//
// Reducers in this package never fail because of the data they are given. Too few points
// produce a placeholder layout and numerical trouble produces a fallback layout; the Layout
// field of each result says which path was taken. Errors are reserved for API misuse
// (unsupported target dimensions, ragged input) and for cancellation.
package projection

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCAResult holds the projected coordinates, index-aligned with the input vectors, and the
// fraction of total variance captured by each retained component in descending order.
type PCAResult struct {
	Coords            [][]float64
	ExplainedVariance []float64
	Layout            Layout
}

// PCA reduces embedding vectors to targetDimensions (2 or 3) principal components.
//
// Fewer than two vectors cannot define a direction of variance, so point i is placed at
// (i, 0[, 0]) with a uniform placeholder variance. Non-finite input, a failed SVD or a
// non-finite projection falls back to the leading raw dimensions of each vector.
func PCA(embeddingVectors [][]float64, targetDimensions int) (PCAResult, error) {
	if err := validateTargetDimensions(targetDimensions); err != nil {
		return PCAResult{}, err
	}

	numberOfVectors := len(embeddingVectors)
	if numberOfVectors < 2 {
		return PCAResult{
			Coords:            createPlaceholderLayout(numberOfVectors, targetDimensions),
			ExplainedVariance: uniformVariance(targetDimensions),
			Layout:            LayoutPlaceholder,
		}, nil
	}

	embeddingDimension := len(embeddingVectors[0])
	if !allVectorsHaveSameDimension(embeddingVectors, embeddingDimension) {
		return PCAResult{}, ErrRaggedInput
	}

	// Non-finite values would poison every singular vector, and empty vectors give
	// gonum nothing to factorize
	if embeddingDimension == 0 || !allValuesFinite(embeddingVectors) {
		return truncationResult(embeddingVectors, targetDimensions), nil
	}

	// Step 1: Convert input vectors to a matrix format suitable for linear algebra operations
	dataMatrix := convertVectorsToMatrix(embeddingVectors, numberOfVectors, embeddingDimension)

	// Step 2: Center the data by subtracting the mean of each dimension
	centerDataMatrixBySubtractingColumnMeans(dataMatrix, numberOfVectors, embeddingDimension)

	// Step 3: Compute SVD and extract the top principal components
	principalComponentMatrix, singularValues, svdSucceeded := computePrincipalComponentsUsingSVD(dataMatrix, embeddingDimension, targetDimensions)
	if !svdSucceeded {
		return truncationResult(embeddingVectors, targetDimensions), nil
	}

	// Step 4: Project the centered data onto the subspace defined by the principal components
	projectedCoordinates := projectDataOntoPrincipalComponents(dataMatrix, principalComponentMatrix)
	coords := convertProjectedMatrixToRows(projectedCoordinates, numberOfVectors, targetDimensions)
	if !allValuesFinite(coords) {
		return truncationResult(embeddingVectors, targetDimensions), nil
	}

	// Step 5: Report how much of the total variance each retained component explains
	return PCAResult{
		Coords:            coords,
		ExplainedVariance: computeExplainedVarianceRatios(singularValues, targetDimensions),
		Layout:            LayoutComputed,
	}, nil
}

// truncationResult wraps the raw-dimension fallback with its placeholder variance.
func truncationResult(embeddingVectors [][]float64, targetDimensions int) PCAResult {
	return PCAResult{
		Coords:            createTruncationLayout(embeddingVectors, targetDimensions),
		ExplainedVariance: uniformVariance(targetDimensions),
		Layout:            LayoutTruncation,
	}
}

// convertVectorsToMatrix copies the vectors into a gonum Dense matrix of shape
// (numberOfVectors x embeddingDimension), one embedding per row.
func convertVectorsToMatrix(vectors [][]float64, numberOfVectors int, embeddingDimension int) *mat.Dense {
	flattenedMatrixData := make([]float64, numberOfVectors*embeddingDimension)

	for rowIndex, vector := range vectors {
		copy(flattenedMatrixData[rowIndex*embeddingDimension:], vector)
	}

	return mat.NewDense(numberOfVectors, embeddingDimension, flattenedMatrixData)
}

// centerDataMatrixBySubtractingColumnMeans modifies the matrix in-place to have zero mean
// for each column (dimension).
//
// PCA finds directions of maximum variance. If data isn't centered, the first principal
// component might just point toward the data's center rather than capturing the direction
// of maximum spread.
func centerDataMatrixBySubtractingColumnMeans(dataMatrix *mat.Dense, numberOfVectors int, embeddingDimension int) {
	columnMeans := calculateColumnMeans(dataMatrix, embeddingDimension)

	for rowIndex := 0; rowIndex < numberOfVectors; rowIndex++ {
		for columnIndex := 0; columnIndex < embeddingDimension; columnIndex++ {
			centeredValue := dataMatrix.At(rowIndex, columnIndex) - columnMeans[columnIndex]
			dataMatrix.Set(rowIndex, columnIndex, centeredValue)
		}
	}
}

// calculateColumnMeans computes the arithmetic mean of each column (dimension) in the matrix.
func calculateColumnMeans(dataMatrix *mat.Dense, embeddingDimension int) []float64 {
	columnMeans := make([]float64, embeddingDimension)

	for columnIndex := 0; columnIndex < embeddingDimension; columnIndex++ {
		columnValues := mat.Col(nil, columnIndex, dataMatrix)
		columnMeans[columnIndex] = stat.Mean(columnValues, nil)
	}

	return columnMeans
}

// computePrincipalComponentsUsingSVD performs a thin SVD of the centered data matrix and
// returns a (embeddingDimension x targetDimensions) matrix whose columns are the leading
// principal components, together with all singular values in descending order.
//
// The thin V has min(numberOfVectors, embeddingDimension) columns. When the data has fewer
// components than requested (two vectors projected to 3D, or 2-dimensional embeddings
// projected to 3D) the missing columns stay zero, which places every point at 0 on that axis.
func computePrincipalComponentsUsingSVD(centeredDataMatrix *mat.Dense, embeddingDimension int, targetDimensions int) (*mat.Dense, []float64, bool) {
	var svdDecomposition mat.SVD

	if !svdDecomposition.Factorize(centeredDataMatrix, mat.SVDThin) {
		return nil, nil, false
	}

	singularValues := svdDecomposition.Values(nil)

	var rightSingularVectors mat.Dense
	svdDecomposition.VTo(&rightSingularVectors)

	numberOfRows, numberOfColumns := rightSingularVectors.Dims()
	if numberOfRows != embeddingDimension {
		return nil, nil, false
	}

	principalComponentMatrix := mat.NewDense(embeddingDimension, targetDimensions, nil)
	availableComponents := min(numberOfColumns, targetDimensions)

	for dimensionIndex := 0; dimensionIndex < embeddingDimension; dimensionIndex++ {
		for componentIndex := 0; componentIndex < availableComponents; componentIndex++ {
			principalComponentMatrix.Set(dimensionIndex, componentIndex, rightSingularVectors.At(dimensionIndex, componentIndex))
		}
	}

	return principalComponentMatrix, singularValues, true
}

// projectDataOntoPrincipalComponents multiplies the centered data matrix by the principal
// component matrix: (numberOfVectors x D) × (D x k) = (numberOfVectors x k).
func projectDataOntoPrincipalComponents(centeredDataMatrix *mat.Dense, principalComponentMatrix *mat.Dense) *mat.Dense {
	var projectedCoordinates mat.Dense
	projectedCoordinates.Mul(centeredDataMatrix, principalComponentMatrix)
	return &projectedCoordinates
}

// convertProjectedMatrixToRows copies the projected matrix into one coordinate slice per vector.
func convertProjectedMatrixToRows(projectedCoordinates *mat.Dense, numberOfVectors int, targetDimensions int) [][]float64 {
	coords := make([][]float64, numberOfVectors)
	for vectorIndex := range coords {
		coords[vectorIndex] = mat.Row(nil, vectorIndex, projectedCoordinates)[:targetDimensions]
	}
	return coords
}

// computeExplainedVarianceRatios converts singular values into the share of total variance
// carried by each of the first targetDimensions components. Components beyond the rank of
// the data explain nothing. When the data has no variance at all (every vector identical)
// every share is 0.
func computeExplainedVarianceRatios(singularValues []float64, targetDimensions int) []float64 {
	var totalVariance float64
	for _, singularValue := range singularValues {
		totalVariance += singularValue * singularValue
	}

	ratios := make([]float64, targetDimensions)
	if totalVariance == 0 {
		return ratios
	}

	for componentIndex := 0; componentIndex < targetDimensions && componentIndex < len(singularValues); componentIndex++ {
		ratios[componentIndex] = singularValues[componentIndex] * singularValues[componentIndex] / totalVariance
	}
	return ratios
}
