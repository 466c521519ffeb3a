// Package embedding defines the interface for text embedding providers.
// It allows the application to use different embedding backends (Ollama, OpenAI,
// Hugging Face) interchangeably, and provides a batch helper that throttles and retries
// calls to whichever backend is configured.
package embedding

import "context"

// Embedder is the interface that text embedding providers must implement.
type Embedder interface {
	// Embed converts the provided text into a vector embedding.
	// It returns a slice of float32 values representing the text in embedding space,
	// or an error if the embedding request fails.
	// If the input text is empty, Embed should return nil without error.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Func adapts an ordinary function to the Embedder interface.
type Func func(ctx context.Context, text string) ([]float32, error)

// Embed calls f(ctx, text).
func (f Func) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// ToFloat64 widens an embedding to the float64 vectors the analysis core works with.
func ToFloat64(vector []float32) []float64 {
	if vector == nil {
		return nil
	}
	widened := make([]float64, len(vector))
	for i, value := range vector {
		widened[i] = float64(value)
	}
	return widened
}

// ToFloat32 narrows an analysis vector to the precision providers and stores use.
func ToFloat32(vector []float64) []float32 {
	if vector == nil {
		return nil
	}
	narrowed := make([]float32, len(vector))
	for i, value := range vector {
		narrowed[i] = float32(value)
	}
	return narrowed
}
