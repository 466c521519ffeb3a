// Package openai embeds text with the OpenAI embeddings API, or any server that speaks the
// same protocol.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.SmallEmbedding3

// Client wraps the OpenAI API client.
type Client struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewClient returns a client for model. An empty baseURL uses the public API.
func NewClient(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	embeddingModel := openai.EmbeddingModel(model)
	if model == "" {
		embeddingModel = DefaultModel
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  embeddingModel,
	}, nil
}

// Model returns the configured embedding model.
func (c *Client) Model() string { return string(c.model) }

// Embed returns the embedding of text. Empty text returns nil without a request.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, nil
	}

	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds several texts in one request and returns them in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
