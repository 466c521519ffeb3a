// Package ollama provides an HTTP client for interacting with the Ollama API.
// It specifically handles text embedding requests, converting text strings into
// high-dimensional vector representations using Ollama's embedding models.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single embedding request.
const DefaultTimeout = 60 * time.Second

// Client handles HTTP communication with the Ollama embedding API.
// It maintains the connection configuration and reuses an HTTP client
// for efficient request handling.
type Client struct {
	baseURL    string       // The base URL of the Ollama server (e.g., "http://localhost:11434")
	modelName  string       // The name of the embedding model to use (e.g., "nomic-embed-text")
	httpClient *http.Client // Reusable HTTP client for making requests
}

// embeddingRequest represents the JSON payload sent to the Ollama /api/embed endpoint.
type embeddingRequest struct {
	Model string `json:"model"` // The model identifier to use for embedding
	Input string `json:"input"` // The text content to be embedded
}

// embeddingResponse represents the JSON response from the Ollama /api/embed endpoint.
// Embeddings are returned as a slice of slices to support batch embedding requests,
// though this client only sends one text per request.
type embeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"` // Array of embedding vectors
}

// errorResponse is the body Ollama sends with non-200 statuses.
type errorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a new Ollama client configured to connect to the specified
// server and use the given embedding model.
func NewClient(baseURL, modelName string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelName:  modelName,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Model returns the configured model name.
func (ollamaClient *Client) Model() string { return ollamaClient.modelName }

// Embed converts the provided text into a vector embedding using the Ollama API.
//
// If the input text is empty, Embed returns nil without making an API request.
func (ollamaClient *Client) Embed(ctx context.Context, inputText string) ([]float32, error) {
	if inputText == "" {
		return nil, nil
	}

	jsonRequestBody, marshalError := json.Marshal(embeddingRequest{
		Model: ollamaClient.modelName,
		Input: inputText,
	})
	if marshalError != nil {
		return nil, fmt.Errorf("marshal request: %w", marshalError)
	}

	embeddingEndpointURL := ollamaClient.baseURL + "/api/embed"
	httpRequest, requestError := http.NewRequestWithContext(ctx, http.MethodPost, embeddingEndpointURL, bytes.NewReader(jsonRequestBody))
	if requestError != nil {
		return nil, fmt.Errorf("create request: %w", requestError)
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	httpResponse, postError := ollamaClient.httpClient.Do(httpRequest)
	if postError != nil {
		return nil, fmt.Errorf("post request: %w", postError)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, statusError(httpResponse)
	}

	var parsedResponse embeddingResponse
	if decodeError := json.NewDecoder(httpResponse.Body).Decode(&parsedResponse); decodeError != nil {
		return nil, fmt.Errorf("decode response: %w", decodeError)
	}

	if len(parsedResponse.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	// We only requested one
	return parsedResponse.Embeddings[0], nil
}

// statusError turns a failed response into an error, including Ollama's message when the
// body carries one (for example "model \"x\" not found, try pulling it first").
func statusError(httpResponse *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 4096))

	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		return fmt.Errorf("unexpected status %d: %s", httpResponse.StatusCode, parsed.Error)
	}
	return fmt.Errorf("unexpected status: %d", httpResponse.StatusCode)
}
