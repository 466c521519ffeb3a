// Package analysis turns a batch of embedding records into pairwise comparisons, a 2D or 3D
// layout and a coarse quadrant grouping.
//
// Input validation is the only hard failure. Once a batch is accepted every stage degrades
// instead of failing, so callers always receive a structurally valid Result unless the
// context is cancelled.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alDuncanson/embscope/embedding"
	"github.com/alDuncanson/embscope/projection"
	"github.com/alDuncanson/embscope/similarity"
)

// Pipeline runs analyses. It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	embedder  embedding.Embedder
	logger    *slog.Logger
	batchOpts embedding.BatchOptions
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEmbedder sets the model used by the text entry points.
func WithEmbedder(embedder embedding.Embedder) Option {
	return func(p *Pipeline) { p.embedder = embedder }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithBatchOptions controls throttling and retries when embedding texts.
func WithBatchOptions(opts embedding.BatchOptions) Option {
	return func(p *Pipeline) { p.batchOpts = opts }
}

// New returns a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:    slog.New(slog.DiscardHandler),
		batchOpts: embedding.DefaultBatchOptions(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze validates records, reduces their vectors, groups the reduced points and compares
// every pair. Comparisons and reduction run concurrently.
func (p *Pipeline) Analyze(ctx context.Context, records []Record, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := validateRecords(records); err != nil {
		return nil, err
	}

	start := time.Now()
	vectors := vectorsOf(records)
	logger := p.logger.With("records", len(records), "dimension", len(vectors[0]), "method", cfg.Method)
	logger.Debug("analysis started")

	var (
		comparisons []Comparison
		group       float64
		reduced     reduction
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		comparisons, err = compareAll(gctx, records)
		if err != nil {
			return err
		}
		group, err = similarity.GroupSimilarity(vectors)
		return err
	})

	g.Go(func() error {
		input := vectors
		if cfg.Normalize {
			input = similarity.Normalize(vectors)
		}

		var err error
		reduced, err = p.reduce(gctx, records, input, cfg)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrReductionFailed, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Debug("analysis aborted", "error", err)
		return nil, err
	}

	points := formatPoints(records, reduced.coords)
	result := &Result{
		Records:             records,
		Points:              points,
		Clusters:            projection.QuadrantClusters(reduced.coords, labelsOf(records)),
		Comparisons:         comparisons,
		Method:              cfg.Method,
		Dimensions:          cfg.Dimensions,
		Layout:              reduced.layout,
		ExplainedVariance:   reduced.explainedVariance,
		EffectivePerplexity: reduced.effectivePerplexity,
		PerplexityClamped:   reduced.perplexityClamped,
		Iterations:          reduced.iterations,
		Converged:           reduced.converged,
		Fallback:            reduced.fallback,
		GroupSimilarity:     group,
	}

	if result.Fallback != "" {
		logger.Warn("reducer fell back to a synthetic layout", "layout", result.Layout, "error", result.Fallback)
	}
	logger.Info("analysis complete",
		"layout", result.Layout,
		"clusters", len(result.Clusters),
		"comparisons", len(result.Comparisons),
		"elapsed", time.Since(start),
	)
	return result, nil
}

// AnalyzeTexts embeds texts with the pipeline's embedder and analyzes them. Each text becomes
// a record labelled with the text itself.
func (p *Pipeline) AnalyzeTexts(ctx context.Context, texts []string, cfg Config) (*Result, error) {
	records, err := p.EmbedRecords(ctx, texts)
	if err != nil {
		return nil, err
	}
	return p.Analyze(ctx, records, cfg)
}

// EmbedRecords embeds texts into records with fresh IDs.
func (p *Pipeline) EmbedRecords(ctx context.Context, texts []string) ([]Record, error) {
	if p.embedder == nil {
		return nil, ErrNoEmbedder
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts", ErrInvalidInput)
	}

	opts := p.batchOpts
	if opts.Logger == nil {
		opts.Logger = p.logger
	}
	vectors, err := embedding.EmbedAll(ctx, p.embedder, texts, opts)
	if err != nil {
		return nil, fmt.Errorf("embed texts: %w", err)
	}

	now := time.Now().UTC()
	records := make([]Record, len(texts))
	for i, text := range texts {
		records[i] = Record{
			ID:        uuid.NewString(),
			Label:     text,
			Vector:    embedding.ToFloat64(vectors[i]),
			CreatedAt: now,
		}
	}
	return records, nil
}

func validateRecords(records []Record) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: no records", ErrInvalidInput)
	}
	dimension := len(records[0].Vector)
	for i, record := range records {
		if len(record.Vector) == 0 {
			return fmt.Errorf("%w: record %d (%q) has an empty vector", ErrInvalidInput, i, record.Label)
		}
		if len(record.Vector) != dimension {
			return fmt.Errorf("%w: record %d (%q) has dimension %d, expected %d",
				ErrInvalidInput, i, record.Label, len(record.Vector), dimension)
		}
		if component, ok := firstNonFinite(record.Vector); ok {
			return fmt.Errorf("%w: record %d (%q) has a non-finite value at component %d",
				ErrInvalidInput, i, record.Label, component)
		}
	}
	return nil
}

// firstNonFinite returns the index of the first NaN or infinite component.
func firstNonFinite(vector []float64) (int, bool) {
	for i, value := range vector {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return i, true
		}
	}
	return 0, false
}

func formatPoints(records []Record, coords [][]float64) []ReducedPoint {
	points := make([]ReducedPoint, len(records))
	for i, record := range records {
		points[i] = ReducedPoint{
			ID:     record.ID,
			Label:  record.Label,
			Coords: coords[i],
		}
	}
	return points
}
