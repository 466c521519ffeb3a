package similarity

import (
	"fmt"
	"strings"
)

// Confidence is a coarse tier attached to an interpreted cosine score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Interpretation is the textual band a cosine score falls into.
type Interpretation struct {
	Label      string     `json:"label" yaml:"label"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// band thresholds are inclusive lower bounds, checked from the top.
var bands = []struct {
	threshold      float64
	interpretation Interpretation
}{
	{0.9, Interpretation{"extremely similar", ConfidenceHigh}},
	{0.8, Interpretation{"very similar", ConfidenceHigh}},
	{0.7, Interpretation{"similar", ConfidenceMedium}},
	{0.5, Interpretation{"somewhat similar", ConfidenceMedium}},
	{0.3, Interpretation{"slightly similar", ConfidenceLow}},
}

// Interpret maps a cosine similarity score onto one of six ordered bands.
func Interpret(score float64) Interpretation {
	for _, band := range bands {
		if score >= band.threshold {
			return band.interpretation
		}
	}
	return Interpretation{"different", ConfidenceLow}
}

// Metric names one of the pairwise measurements.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
	MetricManhattan Metric = "manhattan"
	MetricDot       Metric = "dot"
)

// Func is a pairwise measurement over equal-length vectors.
type Func func(a, b []float64) (float64, error)

// ParseMetric resolves a metric by name, case-insensitively.
func ParseMetric(name string) (Metric, error) {
	switch metric := Metric(strings.ToLower(strings.TrimSpace(name))); metric {
	case MetricCosine, MetricEuclidean, MetricManhattan, MetricDot:
		return metric, nil
	default:
		return "", fmt.Errorf("unknown metric %q", name)
	}
}

// Func returns the function computing m.
func (m Metric) Func() Func {
	switch m {
	case MetricEuclidean:
		return EuclideanDistance
	case MetricManhattan:
		return ManhattanDistance
	case MetricDot:
		return DotProduct
	default:
		return CosineSimilarity
	}
}

// HigherIsCloser reports whether larger values of m mean more similar vectors.
func (m Metric) HigherIsCloser() bool {
	return m == MetricCosine || m == MetricDot || m == ""
}
