package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alDuncanson/embscope/analysis"
	"github.com/alDuncanson/embscope/dataimport"
	"github.com/alDuncanson/embscope/huggingface"
	"github.com/alDuncanson/embscope/logging"
	"github.com/alDuncanson/embscope/tui"
)

// analysisFlags are shared by analyze and view. Unset flags keep the config values.
type analysisFlags struct {
	method     string
	dimensions int
	perplexity float64
	iterations int
	seed       int64
	normalize  bool

	fromQdrant bool
	embed      bool

	hfDataset string
	hfConfig  string
	hfSplit   string
	hfColumn  string
	hfMaxRows int
}

func (f *analysisFlags) register(flags *pflag.FlagSet) {
	f.registerTuning(flags)
	f.registerSources(flags)
}

func (f *analysisFlags) registerTuning(flags *pflag.FlagSet) {
	flags.StringVarP(&f.method, "method", "m", "", "reduction method: linear (pca) or nonlinear (tsne)")
	flags.IntVarP(&f.dimensions, "dims", "d", 0, "target dimensions, 2 or 3")
	flags.Float64Var(&f.perplexity, "perplexity", 0, "t-SNE perplexity")
	flags.IntVar(&f.iterations, "iterations", 0, "t-SNE iterations")
	flags.Int64Var(&f.seed, "seed", 0, "t-SNE random seed")
	flags.BoolVar(&f.normalize, "normalize", false, "scale vectors to unit length before reduction")
}

func (f *analysisFlags) registerSources(flags *pflag.FlagSet) {
	flags.BoolVar(&f.fromQdrant, "qdrant", false, "analyze every record in the configured Qdrant collection")
	flags.BoolVar(&f.embed, "embed", false, "treat the file as texts and embed them with the configured provider")

	flags.StringVar(&f.hfDataset, "hf-dataset", "", "embed a text column of a Hugging Face dataset")
	flags.StringVar(&f.hfConfig, "hf-config", "", "dataset config (default: first)")
	flags.StringVar(&f.hfSplit, "hf-split", "", "dataset split (default: first)")
	flags.StringVar(&f.hfColumn, "hf-column", "text", "dataset column holding the text")
	flags.IntVar(&f.hfMaxRows, "hf-max-rows", 100, "maximum dataset rows to embed")
}

func (f *analysisFlags) config(base analysis.Config) (analysis.Config, error) {
	cfg := base
	if f.method != "" {
		method, err := analysis.ParseMethod(f.method)
		if err != nil {
			return cfg, err
		}
		cfg.Method = method
	}
	if f.dimensions != 0 {
		cfg.Dimensions = f.dimensions
	}
	if f.perplexity != 0 {
		cfg.Perplexity = f.perplexity
	}
	if f.iterations != 0 {
		cfg.Iterations = f.iterations
	}
	if f.seed != 0 {
		cfg.Seed = f.seed
	}
	if f.normalize {
		cfg.Normalize = true
	}
	return cfg, nil
}

// source describes where records come from; exactly one of the fields drives loading.
type source struct {
	texts   []string
	records []analysis.Record
}

func (a *app) loadSource(ctx context.Context, f *analysisFlags, args []string) (source, error) {
	switch {
	case f.fromQdrant:
		if len(args) > 0 {
			return source{}, errors.New("--qdrant does not take a file argument")
		}
		store, err := a.openStore(ctx, a.cfg)
		if err != nil {
			return source{}, err
		}
		defer store.Close()

		points, err := store.GetAll(ctx)
		if err != nil {
			return source{}, fmt.Errorf("reading qdrant: %w", err)
		}
		records := make([]analysis.Record, len(points))
		for i, point := range points {
			records[i] = point.Record()
		}
		a.logger.Info("loaded records from qdrant", "records", len(records), "collection", a.cfg.Qdrant.Collection)
		return source{records: records}, nil

	case f.hfDataset != "":
		texts, err := huggingface.NewClient("").FetchTexts(ctx, huggingface.DatasetQuery{
			Dataset: f.hfDataset,
			Config:  f.hfConfig,
			Split:   f.hfSplit,
			Column:  f.hfColumn,
			MaxRows: f.hfMaxRows,
		})
		if err != nil {
			return source{}, fmt.Errorf("fetching dataset: %w", err)
		}
		a.logger.Info("fetched dataset rows", "records", len(texts), "dataset", f.hfDataset)
		return source{texts: texts}, nil

	case len(args) == 0:
		return source{}, errors.New("a file argument, --qdrant or --hf-dataset is required")

	case f.embed:
		texts, err := dataimport.LoadTexts(args[0])
		if err != nil {
			return source{}, fmt.Errorf("loading texts: %w", err)
		}
		return source{texts: texts}, nil

	default:
		records, err := dataimport.LoadRecords(args[0])
		if err != nil {
			return source{}, fmt.Errorf("loading records: %w", err)
		}
		return source{records: records}, nil
	}
}

func (a *app) analyzeSource(ctx context.Context, src source, cfg analysis.Config) (*analysis.Result, error) {
	pipeline, err := a.pipeline(src.texts != nil)
	if err != nil {
		return nil, err
	}
	if src.texts != nil {
		return pipeline.AnalyzeTexts(ctx, src.texts, cfg)
	}
	return pipeline.Analyze(ctx, src.records, cfg)
}

func (a *app) newAnalyzeCmd() *cobra.Command {
	var (
		flags analysisFlags
		view  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Reduce, cluster and compare embeddings",
		Long: `Analyze a set of embeddings: project them to 2D or 3D, group the projected
points into quadrant clusters and compare every pair.

Records come from a JSON, YAML or CSV file of pre-embedded records, from a
text file embedded with --embed, from a Hugging Face dataset (--hf-dataset),
or from the configured Qdrant collection (--qdrant).`,
		Example: `  embscope analyze records.json
  embscope analyze notes.txt --embed --method tsne --dims 3
  embscope analyze --qdrant --format json
  embscope analyze --hf-dataset imdb --hf-max-rows 50 --view`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config(a.cfg.AnalysisConfig())
			if err != nil {
				return err
			}
			src, err := a.loadSource(cmd.Context(), &flags, args)
			if err != nil {
				return err
			}

			if view {
				return a.runViewer(cmd.Context(), src, cfg)
			}

			result, err := a.analyzeSource(cmd.Context(), src, cfg)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.format, result)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&view, "view", false, "open the result in the terminal viewer")
	return cmd
}

func (a *app) newViewCmd() *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Run an analysis inside the terminal viewer",
		Long: `Run an analysis inside the terminal viewer. With the nonlinear method, which
is the default here, the plot follows t-SNE as it optimizes. Quitting the
viewer cancels the analysis.

Accepts the same sources as analyze.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := a.cfg.AnalysisConfig()
			if !cmd.Flags().Changed("method") {
				base.Method = analysis.MethodNonlinear
			}
			cfg, err := flags.config(base)
			if err != nil {
				return err
			}
			src, err := a.loadSource(cmd.Context(), &flags, args)
			if err != nil {
				return err
			}
			return a.runViewer(cmd.Context(), src, cfg)
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

// runViewer hands the terminal to the viewer; logging would draw over it, so it is discarded.
func (a *app) runViewer(ctx context.Context, src source, cfg analysis.Config) error {
	a.logger = logging.Discard()
	return tui.Run(ctx, func(ctx context.Context, progress func(analysis.Progress)) (*analysis.Result, error) {
		cfg.Progress = progress
		return a.analyzeSource(ctx, src, cfg)
	}, a.version)
}
