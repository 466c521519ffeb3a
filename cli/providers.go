package cli

import (
	"context"
	"fmt"

	"github.com/alDuncanson/embscope/config"
	"github.com/alDuncanson/embscope/embedding"
	"github.com/alDuncanson/embscope/huggingface"
	"github.com/alDuncanson/embscope/ollama"
	"github.com/alDuncanson/embscope/openai"
	"github.com/alDuncanson/embscope/qdrant"
)

// NewEmbedder returns the embedder for cfg.Embedder.Provider.
func NewEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.Embedder.Provider {
	case config.ProviderOllama:
		return ollama.NewClient(cfg.Embedder.Ollama.Host, cfg.Embedder.Ollama.Model), nil
	case config.ProviderOpenAI:
		client, err := openai.NewClient(cfg.Embedder.OpenAI.APIKey, cfg.Embedder.OpenAI.BaseURL, cfg.Embedder.OpenAI.Model)
		if err != nil {
			return nil, fmt.Errorf("%w (set %s)", err, cfg.Embedder.OpenAI.APIKeyEnv)
		}
		return client, nil
	case config.ProviderHuggingFace:
		hf := cfg.Embedder.HuggingFace
		return huggingface.NewEmbeddingsClient(hf.BaseURL, hf.Model, hf.Token), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedder.Provider)
	}
}

// OpenStore connects to the configured Qdrant collection.
func OpenStore(ctx context.Context, cfg *config.Config) (RecordStore, error) {
	client, err := qdrant.NewClient(ctx, cfg.Qdrant.Address, cfg.Qdrant.Collection, uint64(cfg.Qdrant.Dimension))
	if err != nil {
		return nil, fmt.Errorf("%w (is Qdrant running? docker run -p 6333:6333 -p 6334:6334 qdrant/qdrant)", err)
	}
	return client, nil
}
