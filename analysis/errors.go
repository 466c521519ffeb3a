package analysis

import "errors"

var (
	// ErrInvalidInput is returned for an empty batch, an empty vector, vectors of
	// different lengths, or an unusable Config.
	ErrInvalidInput = errors.New("invalid input")

	// ErrReductionFailed wraps an error a reducer could not absorb, including cancellation.
	ErrReductionFailed = errors.New("reduction failed")

	// ErrNoEmbedder is returned by text entry points on a pipeline built without an embedder.
	ErrNoEmbedder = errors.New("no embedder configured")
)
