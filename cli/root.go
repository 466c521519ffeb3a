// Package cli implements the embscope command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alDuncanson/embscope/analysis"
	"github.com/alDuncanson/embscope/config"
	"github.com/alDuncanson/embscope/embedding"
	"github.com/alDuncanson/embscope/logging"
	"github.com/alDuncanson/embscope/qdrant"
)

// Output formats accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// RecordStore is the subset of the Qdrant client the commands use.
type RecordStore interface {
	Upsert(ctx context.Context, points ...qdrant.Point) error
	GetAll(ctx context.Context) ([]qdrant.Point, error)
	Close() error
}

// EmbedderFactory builds the embedder a config selects.
type EmbedderFactory func(cfg *config.Config) (embedding.Embedder, error)

// StoreFactory connects to the record store a config selects.
type StoreFactory func(ctx context.Context, cfg *config.Config) (RecordStore, error)

// Option customizes the root command.
type Option func(*app)

// WithEmbedderFactory replaces the provider lookup.
func WithEmbedderFactory(factory EmbedderFactory) Option {
	return func(a *app) { a.newEmbedder = factory }
}

// WithStoreFactory replaces the Qdrant connection.
func WithStoreFactory(factory StoreFactory) Option {
	return func(a *app) { a.openStore = factory }
}

// WithVersion sets the version reported by the version command and the viewer.
func WithVersion(version string) Option {
	return func(a *app) { a.version = version }
}

// app holds flag values and the state PersistentPreRunE prepares for every command.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	format     string
	version    string

	newEmbedder EmbedderFactory
	openStore   StoreFactory

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{
		version:     "dev",
		newEmbedder: NewEmbedder,
		openStore:   OpenStore,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}

	cmd := &cobra.Command{
		Use:   "embscope",
		Short: "Explore how text embeddings relate",
		Long: `embscope embeds texts, projects the vectors to 2D or 3D with PCA or t-SNE,
groups the projected points and compares every pair with cosine similarity,
Euclidean and Manhattan distance and dot product.

Embeddings come from Ollama, OpenAI or the Hugging Face Inference API, from a
file of pre-embedded records, or from a Qdrant collection.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./embscope.yaml, then ~/.config/embscope/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text, json, logfmt")
	flags.StringVarP(&a.format, "format", "f", FormatTable, "output format: table, json, yaml")

	cmd.AddCommand(
		a.newAnalyzeCmd(),
		a.newViewCmd(),
		a.newCompareCmd(),
		a.newStoreCmd(),
		a.newDemoCmd(),
		a.newMCPCmd(),
		a.newVersionCmd(),
	)
	return cmd
}

// Execute runs the command line and returns the first error.
func Execute(ctx context.Context, version string) error {
	return NewRootCmd(WithVersion(version)).ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	switch a.format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown --format %q (want table, json or yaml)", a.format)
	}

	cfg, path, err := config.LoadDefault(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	if path != "" {
		logger.Debug("config loaded", "path", path)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// pipeline builds an analysis pipeline, with an embedder when withEmbedder is set.
func (a *app) pipeline(withEmbedder bool) (*analysis.Pipeline, error) {
	opts := []analysis.Option{
		analysis.WithLogger(a.logger),
		analysis.WithBatchOptions(embedding.BatchOptions{
			RequestsPerSecond: a.cfg.Embedder.RequestsPerSecond,
			Concurrency:       a.cfg.Embedder.Concurrency,
			MaxRetries:        a.cfg.Embedder.MaxRetries,
		}),
	}
	if withEmbedder {
		embedder, err := a.newEmbedder(a.cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, analysis.WithEmbedder(embedder))
	}
	return analysis.New(opts...), nil
}
