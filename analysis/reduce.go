package analysis

import (
	"context"
	"log/slog"

	"github.com/alDuncanson/embscope/projection"
)

type reduction struct {
	coords              [][]float64
	layout              projection.Layout
	explainedVariance   []float64
	effectivePerplexity float64
	perplexityClamped   bool
	iterations          int
	converged           bool
	fallback            string
}

func (p *Pipeline) reduce(ctx context.Context, records []Record, vectors [][]float64, cfg Config) (reduction, error) {
	if cfg.Method == MethodLinear {
		pca, err := projection.PCA(vectors, cfg.Dimensions)
		if err != nil {
			return reduction{}, err
		}
		return reduction{
			coords:            pca.Coords,
			layout:            pca.Layout,
			explainedVariance: pca.ExplainedVariance,
		}, nil
	}

	tsneConfig := tsneConfigFor(cfg)
	nominal := tsneConfig.Perplexity
	if nominal <= 0 {
		nominal = projection.DefaultTSNEConfig().Perplexity
	}

	effective := projection.EffectivePerplexity(nominal, len(vectors))
	if effective < nominal {
		p.logger.Info("perplexity clamped for small input",
			"perplexity", nominal,
			"effective_perplexity", effective,
			"records", len(vectors),
		)
	}

	var observe func(projection.Frame)
	if cfg.Progress != nil || p.logger.Enabled(ctx, slog.LevelDebug) {
		observe = func(frame projection.Frame) {
			p.logger.Debug("t-SNE progress", "iteration", frame.Iteration, "cost", frame.Cost)
			if cfg.Progress != nil {
				cfg.Progress(Progress{
					Iteration:     frame.Iteration,
					MaxIterations: tsneConfig.MaxIterations,
					Cost:          frame.Cost,
					Points:        formatPoints(records, frame.Coords),
					Final:         frame.Final,
				})
			}
		}
	}

	tsne, err := projection.ReduceTSNE(ctx, vectors, tsneConfig, observe)
	if err != nil {
		return reduction{}, err
	}
	return reduction{
		coords:              tsne.Coords,
		layout:              tsne.Layout,
		effectivePerplexity: tsne.EffectivePerplexity,
		perplexityClamped:   tsne.EffectivePerplexity < nominal,
		iterations:          tsne.Iterations,
		converged:           tsne.Converged,
		fallback:            tsne.Fallback,
	}, nil
}

func tsneConfigFor(cfg Config) projection.TSNEConfig {
	tsneConfig := projection.DefaultTSNEConfig()
	tsneConfig.Dimensions = cfg.Dimensions
	if cfg.Perplexity > 0 {
		tsneConfig.Perplexity = cfg.Perplexity
	}
	if cfg.Iterations > 0 {
		tsneConfig.MaxIterations = cfg.Iterations
	}
	if cfg.LearningRate > 0 {
		tsneConfig.LearningRate = cfg.LearningRate
	}
	if cfg.Seed != 0 {
		tsneConfig.Seed = cfg.Seed
	}
	return tsneConfig
}
