package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var request embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "nomic-embed-text", request.Model)
		assert.Equal(t, "hello", request.Input)

		json.NewEncoder(w).Encode(embeddingResponse{Embeddings: [][]float32{{0.1, 0.2, 0.3}}})
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "nomic-embed-text")
	vector, err := client.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}

func TestClient_EmbedEmptyTextSkipsRequest(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", "m")
	vector, err := client.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, vector)
}

func TestClient_EmbedErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"missing\" not found, try pulling it first"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "missing").Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "try pulling it first")
}

func TestClient_EmbedNoEmbeddings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embeddings":[]}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "m").Embed(context.Background(), "hello")
	assert.ErrorContains(t, err, "no embeddings")
}

func TestClient_EmbedCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL, "m").Embed(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}
