package projection

// # t-SNE (t-distributed Stochastic Neighbor Embedding) Overview
//
// t-SNE is a nonlinear dimensionality reduction technique that emphasizes local
// neighbourhood structure. It works by:
//
//  1. Converting pairwise distances into conditional probabilities with a per-point Gaussian
//     whose width is tuned (by binary search) so that the distribution has a fixed perplexity
//  2. Symmetrizing those into joint probabilities P
//  3. Placing points randomly in the low-dimensional space, where similarities Q follow a
//     heavy-tailed Student-t distribution
//  4. Moving points by gradient descent on KL(P || Q), with early exaggeration of P so that
//     clusters form first, momentum, and per-parameter adaptive gains
//
// Reference: van der Maaten, L., & Hinton, G. (2008). Visualizing Data using t-SNE.
// Journal of Machine Learning Research, 9, 2579-2605.
//
// This implementation is the exact O(n²) variant; embedding batches are small enough that
// Barnes-Hut approximation is not worth its complexity.

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"math/rand"
)

const (
	// minTSNEPoints is the smallest input for which the neighbour model is meaningful.
	minTSNEPoints = 4

	// failureLayoutRadius scales the circular layout used when an optimization blows up,
	// so that it is visibly different from the tiny-input circle.
	failureLayoutRadius = 10.0

	momentumSwitchIteration = 250
	initialMomentum         = 0.5
	finalMomentum           = 0.8
	minGain                 = 0.01

	perplexitySearchTolerance = 1e-4
	perplexitySearchMaxTries  = 50
	probabilityFloor          = 1e-100
)

// ErrAbandoned is reported by TSNE.Err when the consumer stopped iterating early.
var ErrAbandoned = errors.New("t-SNE run abandoned before completion")

// TSNEConfig holds hyperparameters for t-SNE.
type TSNEConfig struct {
	Dimensions             int     // Output dimensionality, 2 or 3 (default: 2)
	Perplexity             float64 // Nominal neighbourhood size; clamped for small inputs (default: 30)
	LearningRate           float64 // Gradient step size (default: 10)
	MaxIterations          int     // Hard iteration cap (default: 500)
	EarlyExaggeration      float64 // P multiplier during the first iterations (default: 4)
	ExaggerationIterations int     // How long exaggeration lasts; negative disables it (default: 100)
	MinGradNorm            float64 // Convergence threshold on the gradient norm (default: 1e-7)
	ProgressInterval       int     // Emit a frame every N iterations (default: 50)
	Seed                   int64   // Random seed for the initial layout
}

// DefaultTSNEConfig returns sensible default hyperparameters.
func DefaultTSNEConfig() TSNEConfig {
	return TSNEConfig{
		Dimensions:             2,
		Perplexity:             30,
		LearningRate:           10,
		MaxIterations:          500,
		EarlyExaggeration:      4,
		ExaggerationIterations: 100,
		MinGradNorm:            1e-7,
		ProgressInterval:       50,
		Seed:                   42,
	}
}

// withDefaults fills zero-valued fields from DefaultTSNEConfig.
func (config TSNEConfig) withDefaults() TSNEConfig {
	defaults := DefaultTSNEConfig()
	if config.Dimensions == 0 {
		config.Dimensions = defaults.Dimensions
	}
	if config.Perplexity <= 0 {
		config.Perplexity = defaults.Perplexity
	}
	if config.LearningRate <= 0 {
		config.LearningRate = defaults.LearningRate
	}
	if config.MaxIterations <= 0 {
		config.MaxIterations = defaults.MaxIterations
	}
	if config.EarlyExaggeration <= 0 {
		config.EarlyExaggeration = defaults.EarlyExaggeration
	}
	switch {
	case config.ExaggerationIterations == 0:
		config.ExaggerationIterations = defaults.ExaggerationIterations
	case config.ExaggerationIterations < 0:
		config.ExaggerationIterations = 0
	}
	if config.MinGradNorm <= 0 {
		config.MinGradNorm = defaults.MinGradNorm
	}
	if config.ProgressInterval <= 0 {
		config.ProgressInterval = defaults.ProgressInterval
	}
	return config
}

// EffectivePerplexity clamps the nominal perplexity to floor((n-1)/3), the largest value
// for which every point still has enough neighbours to match it. A non-positive nominal
// value is replaced by the default first.
func EffectivePerplexity(perplexity float64, numberOfPoints int) float64 {
	if perplexity <= 0 {
		perplexity = DefaultTSNEConfig().Perplexity
	}
	upperBound := math.Floor(float64(numberOfPoints-1) / 3)
	if upperBound < 0 {
		upperBound = 0
	}
	return math.Min(perplexity, upperBound)
}

// Frame is one intermediate (or the final) layout of a t-SNE run.
type Frame struct {
	Iteration int         // Iterations completed so far
	Cost      float64     // KL divergence between P and the current Q
	Coords    [][]float64 // Copy of the layout; safe to retain
	Final     bool        // Set on the last frame of a completed run
}

// TSNE is a single optimization run. It is created with NewTSNE and driven by ranging over
// Frames exactly once; the run cannot be restarted.
type TSNE struct {
	config              TSNEConfig
	effectivePerplexity float64
	numberOfPoints      int

	jointProbabilities [][]float64
	embedding          [][]float64
	velocity           [][]float64
	gains              [][]float64

	// scratch buffers reused by every gradient evaluation
	studentNumerators [][]float64
	gradient          [][]float64

	iteration int
	started   bool
	converged bool
	err       error
}

// NewTSNE prepares a run over data: it measures pairwise distances, calibrates the
// per-point Gaussians against the effective perplexity and draws the initial layout.
func NewTSNE(data [][]float64, config TSNEConfig) (*TSNE, error) {
	config = config.withDefaults()
	if err := validateTargetDimensions(config.Dimensions); err != nil {
		return nil, err
	}

	numberOfPoints := len(data)
	if numberOfPoints < minTSNEPoints {
		return nil, fmt.Errorf("t-SNE needs at least %d points, got %d", minTSNEPoints, numberOfPoints)
	}
	if !allVectorsHaveSameDimension(data, len(data[0])) {
		return nil, ErrRaggedInput
	}
	if !allValuesFinite(data) {
		return nil, fmt.Errorf("%w: input contains non-finite values", ErrNumericalFailure)
	}

	effectivePerplexity := EffectivePerplexity(config.Perplexity, numberOfPoints)

	// Step 1: Squared Euclidean distances between every pair of inputs
	squaredDistances := computeSquaredDistances(data)

	// Step 2: Conditional probabilities calibrated to the perplexity, then symmetrized
	jointProbabilities := computeJointProbabilities(squaredDistances, effectivePerplexity)

	// Step 3: Small random initial layout, reproducible from the seed
	rng := rand.New(rand.NewSource(config.Seed))
	embedding := newMatrix(numberOfPoints, config.Dimensions)
	for pointIndex := range embedding {
		for dimensionIndex := range embedding[pointIndex] {
			embedding[pointIndex][dimensionIndex] = rng.NormFloat64() * 1e-4
		}
	}

	gains := newMatrix(numberOfPoints, config.Dimensions)
	for pointIndex := range gains {
		for dimensionIndex := range gains[pointIndex] {
			gains[pointIndex][dimensionIndex] = 1
		}
	}

	return &TSNE{
		config:              config,
		effectivePerplexity: effectivePerplexity,
		numberOfPoints:      numberOfPoints,
		jointProbabilities:  jointProbabilities,
		embedding:           embedding,
		velocity:            newMatrix(numberOfPoints, config.Dimensions),
		gains:               gains,
		studentNumerators:   newMatrix(numberOfPoints, numberOfPoints),
		gradient:            newMatrix(numberOfPoints, config.Dimensions),
	}, nil
}

// EffectivePerplexity returns the perplexity the run actually calibrated against.
func (tsne *TSNE) EffectivePerplexity() float64 { return tsne.effectivePerplexity }

// Iterations returns the number of completed gradient steps.
func (tsne *TSNE) Iterations() int { return tsne.iteration }

// Converged reports whether the run stopped early because the gradient vanished.
func (tsne *TSNE) Converged() bool { return tsne.converged }

// Err returns why the run ended early: the context error, ErrAbandoned, or a wrapped
// ErrNumericalFailure. It is nil for runs that reached the cap or converged.
func (tsne *TSNE) Err() error { return tsne.err }

// Layout returns a copy of the current layout.
func (tsne *TSNE) Layout() [][]float64 { return copyMatrix(tsne.embedding) }

// Frames returns a lazy, finite sequence of intermediate layouts. A frame is produced every
// ProgressInterval iterations, followed by a final frame once the run converges or reaches
// MaxIterations. Iteration stops without a final frame when ctx is cancelled, when a step
// produces non-finite values, or when the consumer breaks out of the loop; Err says which.
//
// The sequence is single-use: ranging over it a second time yields nothing.
func (tsne *TSNE) Frames(ctx context.Context) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		if tsne.started {
			return
		}
		tsne.started = true

		for tsne.iteration < tsne.config.MaxIterations {
			if err := ctx.Err(); err != nil {
				tsne.err = err
				return
			}

			gradientNorm, err := tsne.step()
			if err != nil {
				tsne.err = err
				return
			}
			tsne.iteration++

			if tsne.iteration > tsne.config.ExaggerationIterations && gradientNorm < tsne.config.MinGradNorm {
				tsne.converged = true
				break
			}

			if tsne.iteration%tsne.config.ProgressInterval == 0 && tsne.iteration < tsne.config.MaxIterations {
				if !yield(tsne.frame(false)) {
					tsne.err = ErrAbandoned
					return
				}
			}
		}

		yield(tsne.frame(true))
	}
}

// frame snapshots the current state.
func (tsne *TSNE) frame(final bool) Frame {
	return Frame{
		Iteration: tsne.iteration,
		Cost:      tsne.cost(),
		Coords:    copyMatrix(tsne.embedding),
		Final:     final,
	}
}

// step performs one gradient update and returns the gradient norm.
func (tsne *TSNE) step() (float64, error) {
	exaggeration := 1.0
	if tsne.iteration < tsne.config.ExaggerationIterations {
		exaggeration = tsne.config.EarlyExaggeration
	}
	momentum := initialMomentum
	if tsne.iteration >= momentumSwitchIteration {
		momentum = finalMomentum
	}

	tsne.computeGradient(exaggeration)

	var squaredGradientNorm float64
	for pointIndex := 0; pointIndex < tsne.numberOfPoints; pointIndex++ {
		for dimensionIndex := 0; dimensionIndex < tsne.config.Dimensions; dimensionIndex++ {
			gradientComponent := tsne.gradient[pointIndex][dimensionIndex]
			velocityComponent := tsne.velocity[pointIndex][dimensionIndex]
			squaredGradientNorm += gradientComponent * gradientComponent

			// Grow the gain while the gradient keeps reversing the current direction of
			// travel, shrink it while they agree
			gain := tsne.gains[pointIndex][dimensionIndex]
			if sign(gradientComponent) == sign(velocityComponent) {
				gain *= 0.8
			} else {
				gain += 0.2
			}
			if gain < minGain {
				gain = minGain
			}
			tsne.gains[pointIndex][dimensionIndex] = gain

			velocityComponent = momentum*velocityComponent - tsne.config.LearningRate*gain*gradientComponent
			tsne.velocity[pointIndex][dimensionIndex] = velocityComponent
			tsne.embedding[pointIndex][dimensionIndex] += velocityComponent
		}
	}

	recenter(tsne.embedding)

	if !allValuesFinite(tsne.embedding) {
		return 0, fmt.Errorf("%w: layout diverged at iteration %d", ErrNumericalFailure, tsne.iteration+1)
	}
	return math.Sqrt(squaredGradientNorm), nil
}

// computeGradient fills tsne.gradient with dC/dy for the current layout:
//
//	dC/dyᵢ = 4 Σⱼ (exaggeration·pᵢⱼ − qᵢⱼ) (1 + ‖yᵢ − yⱼ‖²)⁻¹ (yᵢ − yⱼ)
func (tsne *TSNE) computeGradient(exaggeration float64) {
	numerators := tsne.studentNumerators
	normalization := tsne.fillStudentNumerators()

	for pointIndex := 0; pointIndex < tsne.numberOfPoints; pointIndex++ {
		gradientRow := tsne.gradient[pointIndex]
		for dimensionIndex := range gradientRow {
			gradientRow[dimensionIndex] = 0
		}

		for otherIndex := 0; otherIndex < tsne.numberOfPoints; otherIndex++ {
			if otherIndex == pointIndex {
				continue
			}
			numerator := numerators[pointIndex][otherIndex]
			q := math.Max(numerator/normalization, probabilityFloor)
			strength := 4 * (exaggeration*tsne.jointProbabilities[pointIndex][otherIndex] - q) * numerator
			for dimensionIndex := range gradientRow {
				gradientRow[dimensionIndex] += strength * (tsne.embedding[pointIndex][dimensionIndex] - tsne.embedding[otherIndex][dimensionIndex])
			}
		}
	}
}

// fillStudentNumerators computes (1 + ‖yᵢ − yⱼ‖²)⁻¹ for every pair and returns their sum.
func (tsne *TSNE) fillStudentNumerators() float64 {
	var normalization float64
	for pointIndex := 0; pointIndex < tsne.numberOfPoints; pointIndex++ {
		tsne.studentNumerators[pointIndex][pointIndex] = 0
		for otherIndex := pointIndex + 1; otherIndex < tsne.numberOfPoints; otherIndex++ {
			numerator := 1 / (1 + squaredEuclidean(tsne.embedding[pointIndex], tsne.embedding[otherIndex]))
			tsne.studentNumerators[pointIndex][otherIndex] = numerator
			tsne.studentNumerators[otherIndex][pointIndex] = numerator
			normalization += 2 * numerator
		}
	}
	return normalization
}

// cost returns KL(P || Q) for the current layout.
func (tsne *TSNE) cost() float64 {
	normalization := tsne.fillStudentNumerators()
	var divergence float64
	for pointIndex := 0; pointIndex < tsne.numberOfPoints; pointIndex++ {
		for otherIndex := 0; otherIndex < tsne.numberOfPoints; otherIndex++ {
			if otherIndex == pointIndex {
				continue
			}
			p := tsne.jointProbabilities[pointIndex][otherIndex]
			q := math.Max(tsne.studentNumerators[pointIndex][otherIndex]/normalization, probabilityFloor)
			divergence += p * math.Log(p/q)
		}
	}
	return divergence
}

// computeSquaredDistances returns the full matrix of squared Euclidean distances.
func computeSquaredDistances(data [][]float64) [][]float64 {
	numberOfPoints := len(data)
	distances := newMatrix(numberOfPoints, numberOfPoints)
	for pointIndex := 0; pointIndex < numberOfPoints; pointIndex++ {
		for otherIndex := pointIndex + 1; otherIndex < numberOfPoints; otherIndex++ {
			distance := squaredEuclidean(data[pointIndex], data[otherIndex])
			distances[pointIndex][otherIndex] = distance
			distances[otherIndex][pointIndex] = distance
		}
	}
	return distances
}

// computeJointProbabilities calibrates one Gaussian per point so that its conditional
// distribution over the other points has the requested perplexity, then symmetrizes:
// pᵢⱼ = (pⱼ|ᵢ + pᵢ|ⱼ) / 2n.
//
// The precision β of each Gaussian is found by bisection on the entropy, which grows
// monotonically as β shrinks. When the target cannot be reached (for example when every
// distance is identical) the search stops after a fixed number of tries and keeps the
// closest distribution it found.
func computeJointProbabilities(squaredDistances [][]float64, perplexity float64) [][]float64 {
	numberOfPoints := len(squaredDistances)
	targetEntropy := math.Log(perplexity)
	conditional := newMatrix(numberOfPoints, numberOfPoints)

	for pointIndex := 0; pointIndex < numberOfPoints; pointIndex++ {
		row := conditional[pointIndex]
		beta := 1.0
		betaLow, betaHigh := math.Inf(-1), math.Inf(1)

		for try := 0; try < perplexitySearchMaxTries; try++ {
			entropy := fillConditionalRow(row, squaredDistances[pointIndex], pointIndex, beta)

			if math.Abs(entropy-targetEntropy) < perplexitySearchTolerance {
				break
			}

			if entropy > targetEntropy {
				// Distribution too flat: sharpen the Gaussian
				betaLow = beta
				if math.IsInf(betaHigh, 1) {
					beta *= 2
				} else {
					beta = (beta + betaHigh) / 2
				}
			} else {
				betaHigh = beta
				if math.IsInf(betaLow, -1) {
					beta /= 2
				} else {
					beta = (beta + betaLow) / 2
				}
			}
		}
	}

	joint := newMatrix(numberOfPoints, numberOfPoints)
	for pointIndex := 0; pointIndex < numberOfPoints; pointIndex++ {
		for otherIndex := 0; otherIndex < numberOfPoints; otherIndex++ {
			if otherIndex == pointIndex {
				continue
			}
			symmetric := (conditional[pointIndex][otherIndex] + conditional[otherIndex][pointIndex]) / (2 * float64(numberOfPoints))
			joint[pointIndex][otherIndex] = math.Max(symmetric, probabilityFloor)
		}
	}
	return joint
}

// fillConditionalRow writes pⱼ|ᵢ for precision beta into row and returns the entropy of
// that distribution in nats. Distances are shifted by the nearest neighbour's so the
// closest point always weighs exp(0) and the row cannot underflow to all zeros.
func fillConditionalRow(row, squaredDistances []float64, pointIndex int, beta float64) float64 {
	nearest := math.Inf(1)
	for otherIndex, distance := range squaredDistances {
		if otherIndex != pointIndex && distance < nearest {
			nearest = distance
		}
	}

	var sum float64
	for otherIndex := range row {
		if otherIndex == pointIndex {
			row[otherIndex] = 0
			continue
		}
		row[otherIndex] = math.Exp(-(squaredDistances[otherIndex] - nearest) * beta)
		sum += row[otherIndex]
	}

	var entropy float64
	for otherIndex := range row {
		if sum == 0 {
			row[otherIndex] = 0
			continue
		}
		row[otherIndex] /= sum
		if row[otherIndex] > 1e-7 {
			entropy -= row[otherIndex] * math.Log(row[otherIndex])
		}
	}
	return entropy
}

// TSNEResult is the outcome of ReduceTSNE.
type TSNEResult struct {
	Coords              [][]float64
	Layout              Layout
	EffectivePerplexity float64
	Iterations          int
	Converged           bool
	Fallback            string // Why a degraded layout was used, empty otherwise
}

// ReduceTSNE runs t-SNE to completion and returns the final layout, passing every
// intermediate frame to observe (which may be nil).
//
// Fewer than four points get a circular layout on the unit circle without running the
// optimization. A run that fails numerically gets a circular layout of radius 10. Only a
// cancelled context (or unusable arguments) produces an error; partial work is discarded.
func ReduceTSNE(ctx context.Context, data [][]float64, config TSNEConfig, observe func(Frame)) (TSNEResult, error) {
	config = config.withDefaults()
	if err := validateTargetDimensions(config.Dimensions); err != nil {
		return TSNEResult{}, err
	}

	numberOfPoints := len(data)
	effectivePerplexity := EffectivePerplexity(config.Perplexity, numberOfPoints)

	if numberOfPoints < minTSNEPoints {
		return TSNEResult{
			Coords:              createCircularLayout(numberOfPoints, config.Dimensions, 1),
			Layout:              LayoutCircular,
			EffectivePerplexity: effectivePerplexity,
		}, nil
	}

	runner, err := NewTSNE(data, config)
	if errors.Is(err, ErrNumericalFailure) {
		return failedTSNEResult(numberOfPoints, config.Dimensions, effectivePerplexity, 0, err), nil
	}
	if err != nil {
		return TSNEResult{}, err
	}

	for frame := range runner.Frames(ctx) {
		if observe != nil {
			observe(frame)
		}
	}

	if err := runner.Err(); err != nil {
		if errors.Is(err, ErrNumericalFailure) {
			return failedTSNEResult(numberOfPoints, config.Dimensions, effectivePerplexity, runner.Iterations(), err), nil
		}
		return TSNEResult{}, err
	}

	return TSNEResult{
		Coords:              runner.Layout(),
		Layout:              LayoutComputed,
		EffectivePerplexity: runner.EffectivePerplexity(),
		Iterations:          runner.Iterations(),
		Converged:           runner.Converged(),
	}, nil
}

func failedTSNEResult(numberOfPoints, targetDimensions int, effectivePerplexity float64, iterations int, cause error) TSNEResult {
	return TSNEResult{
		Coords:              createCircularLayout(numberOfPoints, targetDimensions, failureLayoutRadius),
		Layout:              LayoutCircular,
		EffectivePerplexity: effectivePerplexity,
		Iterations:          iterations,
		Fallback:            cause.Error(),
	}
}

// recenter shifts the layout so that its mean is the origin.
func recenter(embedding [][]float64) {
	if len(embedding) == 0 {
		return
	}
	dimensions := len(embedding[0])
	for dimensionIndex := 0; dimensionIndex < dimensions; dimensionIndex++ {
		var sum float64
		for _, point := range embedding {
			sum += point[dimensionIndex]
		}
		mean := sum / float64(len(embedding))
		for _, point := range embedding {
			point[dimensionIndex] -= mean
		}
	}
}

// squaredEuclidean computes the squared Euclidean distance.
func squaredEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

func sign(value float64) int {
	switch {
	case value > 0:
		return 1
	case value < 0:
		return -1
	default:
		return 0
	}
}

func newMatrix(rows, columns int) [][]float64 {
	backing := make([]float64, rows*columns)
	matrix := make([][]float64, rows)
	for rowIndex := range matrix {
		matrix[rowIndex] = backing[rowIndex*columns : (rowIndex+1)*columns : (rowIndex+1)*columns]
	}
	return matrix
}

func copyMatrix(matrix [][]float64) [][]float64 {
	copied := make([][]float64, len(matrix))
	for rowIndex, row := range matrix {
		copied[rowIndex] = append([]float64(nil), row...)
	}
	return copied
}
