package analysis

import (
	"fmt"
	"strings"
)

// Method selects the reducer.
type Method string

const (
	// MethodLinear reduces with PCA and reports explained variance.
	MethodLinear Method = "linear"
	// MethodNonlinear reduces with t-SNE.
	MethodNonlinear Method = "nonlinear"
)

// ParseMethod accepts the method names and the algorithm names ("pca", "tsne").
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear", "pca":
		return MethodLinear, nil
	case "nonlinear", "tsne", "t-sne":
		return MethodNonlinear, nil
	default:
		return "", fmt.Errorf("%w: unknown method %q", ErrInvalidInput, name)
	}
}

// Config controls one analysis run.
type Config struct {
	Method     Method `json:"method" yaml:"method"`
	Dimensions int    `json:"dimensions" yaml:"dimensions"`

	// Normalize scales every vector to unit length before reduction. Comparisons always
	// use the raw vectors.
	Normalize bool `json:"normalize" yaml:"normalize"`

	// t-SNE settings; zero values fall back to projection.DefaultTSNEConfig.
	Perplexity   float64 `json:"perplexity" yaml:"perplexity"`
	Iterations   int     `json:"iterations" yaml:"iterations"`
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
	Seed         int64   `json:"seed" yaml:"seed"`

	// Progress receives intermediate t-SNE layouts. It runs on the reducing goroutine, so
	// a slow callback slows the run.
	Progress func(Progress) `json:"-" yaml:"-"`
}

// DefaultConfig returns a 2D linear analysis.
func DefaultConfig() Config {
	return Config{
		Method:       MethodLinear,
		Dimensions:   2,
		Perplexity:   30,
		Iterations:   500,
		LearningRate: 10,
		Seed:         42,
	}
}

// Progress is an intermediate nonlinear layout.
type Progress struct {
	Iteration     int            `json:"iteration"`
	MaxIterations int            `json:"max_iterations"`
	Cost          float64        `json:"cost"`
	Points        []ReducedPoint `json:"points"`
	Final         bool           `json:"final"`
}

func (c Config) validate() error {
	switch c.Method {
	case MethodLinear, MethodNonlinear:
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidInput, c.Method)
	}
	if c.Dimensions != 2 && c.Dimensions != 3 {
		return fmt.Errorf("%w: dimensions must be 2 or 3, got %d", ErrInvalidInput, c.Dimensions)
	}
	return nil
}
