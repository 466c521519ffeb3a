package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// InferenceBaseURL is the public Inference API endpoint.
const InferenceBaseURL = "https://api-inference.huggingface.co"

// EmbeddingsClient handles HTTP communication with the Hugging Face Inference API
// for generating text embeddings.
type EmbeddingsClient struct {
	baseURL    string
	modelID    string
	token      string
	httpClient *http.Client
}

// embeddingsRequest represents the JSON payload sent to the HF Inference API.
type embeddingsRequest struct {
	Inputs  string          `json:"inputs"`
	Options map[string]bool `json:"options,omitempty"`
}

// NewEmbeddingsClient creates a new Hugging Face embeddings client. An empty baseURL uses
// InferenceBaseURL; an empty token sends anonymous requests.
func NewEmbeddingsClient(baseURL, modelID, token string) *EmbeddingsClient {
	if baseURL == "" {
		baseURL = InferenceBaseURL
	}
	return &EmbeddingsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelID:    modelID,
		token:      token,
		httpClient: &http.Client{},
	}
}

// Embed converts the provided text into a vector embedding using the feature-extraction
// pipeline of the configured model.
func (c *EmbeddingsClient) Embed(ctx context.Context, inputText string) ([]float32, error) {
	if inputText == "" {
		return nil, nil
	}

	jsonBody, err := json.Marshal(embeddingsRequest{
		Inputs:  inputText,
		Options: map[string]bool{"wait_for_model": true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", c.baseURL, c.modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return decodeFeatures(body)
}

// decodeFeatures accepts the shapes feature-extraction returns for a single input: a flat
// sentence embedding [f, ...] from sentence-transformers models, or [[f, ...]] when the
// pipeline wraps it in a batch.
func decodeFeatures(body []byte) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(body, &flat); err == nil {
		if len(flat) == 0 {
			return nil, fmt.Errorf("no embeddings returned")
		}
		return flat, nil
	}

	var nested [][]float32
	if err := json.Unmarshal(body, &nested); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(nested) == 0 || len(nested[0]) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return nested[0], nil
}
