package analysis

import (
	"time"

	"github.com/alDuncanson/embscope/projection"
	"github.com/alDuncanson/embscope/similarity"
)

// Record is one embedded text. The pipeline only reads it.
type Record struct {
	ID        string    `json:"id" yaml:"id"`
	Label     string    `json:"label" yaml:"label"`
	Vector    []float64 `json:"vector" yaml:"vector"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ReducedPoint is a record's position in the 2D or 3D layout.
type ReducedPoint struct {
	ID     string    `json:"id" yaml:"id"`
	Label  string    `json:"label" yaml:"label"`
	Coords []float64 `json:"coords" yaml:"coords"`
}

// Comparison holds the metrics for one unordered pair of records.
type Comparison struct {
	LabelA         string                `json:"label_a" yaml:"label_a"`
	LabelB         string                `json:"label_b" yaml:"label_b"`
	IndexA         int                   `json:"index_a" yaml:"index_a"`
	IndexB         int                   `json:"index_b" yaml:"index_b"`
	Metrics        similarity.Metrics    `json:"metrics" yaml:"metrics"`
	Interpretation string                `json:"interpretation" yaml:"interpretation"`
	Confidence     similarity.Confidence `json:"confidence" yaml:"confidence"`
}

// Cluster is a coarse quadrant group of reduced points.
type Cluster = projection.Cluster

// Result is everything one analysis run produced. Points are index-aligned with Records.
type Result struct {
	Records     []Record       `json:"records" yaml:"records"`
	Points      []ReducedPoint `json:"points" yaml:"points"`
	Clusters    []Cluster      `json:"clusters" yaml:"clusters"`
	Comparisons []Comparison   `json:"comparisons" yaml:"comparisons"`

	Method     Method            `json:"method" yaml:"method"`
	Dimensions int               `json:"dimensions" yaml:"dimensions"`
	Layout     projection.Layout `json:"layout" yaml:"layout"`

	// Linear only.
	ExplainedVariance []float64 `json:"explained_variance,omitempty" yaml:"explained_variance,omitempty"`

	// Nonlinear only.
	EffectivePerplexity float64 `json:"effective_perplexity,omitempty" yaml:"effective_perplexity,omitempty"`
	PerplexityClamped   bool    `json:"perplexity_clamped,omitempty" yaml:"perplexity_clamped,omitempty"`
	Iterations          int     `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Converged           bool    `json:"converged,omitempty" yaml:"converged,omitempty"`

	// Fallback explains a degraded layout caused by a numerical failure.
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`

	GroupSimilarity float64 `json:"group_similarity" yaml:"group_similarity"`
}

// Labels returns the record labels in input order.
func (r *Result) Labels() []string {
	return labelsOf(r.Records)
}

func vectorsOf(records []Record) [][]float64 {
	vectors := make([][]float64, len(records))
	for i, record := range records {
		vectors[i] = record.Vector
	}
	return vectors
}

func labelsOf(records []Record) []string {
	labels := make([]string, len(records))
	for i, record := range records {
		labels[i] = record.Label
	}
	return labels
}

// RecordSummary identifies a record without its vector.
type RecordSummary struct {
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"label" yaml:"label"`
	Dimension int    `json:"dimension" yaml:"dimension"`
}

// Summary is a Result with vectors replaced by their dimension, for display and transport.
type Summary struct {
	Records     []RecordSummary `json:"records" yaml:"records"`
	Points      []ReducedPoint  `json:"points" yaml:"points"`
	Clusters    []Cluster       `json:"clusters" yaml:"clusters"`
	Comparisons []Comparison    `json:"comparisons" yaml:"comparisons"`

	Method              Method            `json:"method" yaml:"method"`
	Dimensions          int               `json:"dimensions" yaml:"dimensions"`
	Layout              projection.Layout `json:"layout" yaml:"layout"`
	ExplainedVariance   []float64         `json:"explained_variance,omitempty" yaml:"explained_variance,omitempty"`
	EffectivePerplexity float64           `json:"effective_perplexity,omitempty" yaml:"effective_perplexity,omitempty"`
	PerplexityClamped   bool              `json:"perplexity_clamped,omitempty" yaml:"perplexity_clamped,omitempty"`
	Iterations          int               `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Converged           bool              `json:"converged,omitempty" yaml:"converged,omitempty"`
	Fallback            string            `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	GroupSimilarity     float64           `json:"group_similarity" yaml:"group_similarity"`
}

// Summary drops the raw vectors from r.
func (r *Result) Summary() Summary {
	records := make([]RecordSummary, len(r.Records))
	for i, record := range r.Records {
		records[i] = RecordSummary{ID: record.ID, Label: record.Label, Dimension: len(record.Vector)}
	}

	return Summary{
		Records:             records,
		Points:              r.Points,
		Clusters:            r.Clusters,
		Comparisons:         r.Comparisons,
		Method:              r.Method,
		Dimensions:          r.Dimensions,
		Layout:              r.Layout,
		ExplainedVariance:   r.ExplainedVariance,
		EffectivePerplexity: r.EffectivePerplexity,
		PerplexityClamped:   r.PerplexityClamped,
		Iterations:          r.Iterations,
		Converged:           r.Converged,
		Fallback:            r.Fallback,
		GroupSimilarity:     r.GroupSimilarity,
	}
}
