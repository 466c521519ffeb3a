package huggingface

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestEmbeddingsClient_Embed(t *testing.T) {
	for name, body := range map[string]string{
		"flat":   `[0.5, -0.25]`,
		"nested": `[[0.5, -0.25]]`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/pipeline/feature-extraction/org/model" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer hf_test" {
					t.Errorf("unexpected authorization header %q", got)
				}
				w.Write([]byte(body))
			}))
			defer server.Close()

			vector, err := NewEmbeddingsClient(server.URL, "org/model", "hf_test").Embed(context.Background(), "hello")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(vector, []float32{0.5, -0.25}) {
				t.Errorf("unexpected vector %v", vector)
			}
		})
	}
}

func TestEmbeddingsClient_Errors(t *testing.T) {
	for name, tc := range map[string]struct {
		status int
		body   string
	}{
		"status":  {http.StatusServiceUnavailable, `{"error":"loading"}`},
		"empty":   {http.StatusOK, `[]`},
		"garbage": {http.StatusOK, `{"not":"an array"}`},
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			if _, err := NewEmbeddingsClient(server.URL, "m", "").Embed(context.Background(), "hello"); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
