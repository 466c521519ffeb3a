package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alDuncanson/embscope/analysis"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EMBSCOPE_PROVIDER", "OLLAMA_HOST", "EMBSCOPE_MODEL", "EMBSCOPE_RATE_LIMIT",
		"EMBSCOPE_DIMENSION", "QDRANT_ADDRESS", "EMBSCOPE_LOG_LEVEL", "EMBSCOPE_LOG_FORMAT",
		"OPENAI_API_KEY", "HF_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderOllama, cfg.Embedder.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.Embedder.Ollama.Host)
	assert.Equal(t, "nomic-embed-text", cfg.Embedder.Ollama.Model)
	assert.Equal(t, "localhost:6334", cfg.Qdrant.Address)
	assert.Equal(t, "linear", cfg.Analysis.Method)
	assert.Equal(t, 2, cfg.Analysis.Dimensions)
	assert.Equal(t, 30.0, cfg.Analysis.Perplexity)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "embscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
embedder:
  provider: openai
  openai:
    api_key_env: MY_KEY
analysis:
  method: tsne
  dimensions: 3
  perplexity: 5
log:
  level: debug
`), 0o644))

	t.Setenv("MY_KEY", "sk-test")
	t.Setenv("EMBSCOPE_MODEL", "text-embedding-3-large")
	t.Setenv("QDRANT_ADDRESS", "qdrant:6334")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderOpenAI, cfg.Embedder.Provider)
	assert.Equal(t, "sk-test", cfg.Embedder.OpenAI.APIKey)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "nomic-embed-text", cfg.Embedder.Ollama.Model)
	assert.Equal(t, "qdrant:6334", cfg.Qdrant.Address)
	assert.Equal(t, "debug", cfg.Log.Level)

	analysisConfig := cfg.AnalysisConfig()
	assert.Equal(t, analysis.MethodNonlinear, analysisConfig.Method)
	assert.Equal(t, 3, analysisConfig.Dimensions)
	assert.Equal(t, 5.0, analysisConfig.Perplexity)
	assert.Equal(t, 500, analysisConfig.Iterations)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: [unterminated"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"provider", func(c *Config) { c.Embedder.Provider = "cohere" }, "embedder.provider"},
		{"method", func(c *Config) { c.Analysis.Method = "umap" }, "analysis.method"},
		{"dimensions", func(c *Config) { c.Analysis.Dimensions = 1 }, "analysis.dimensions"},
		{"perplexity", func(c *Config) { c.Analysis.Perplexity = -1 }, "analysis.perplexity"},
		{"iterations", func(c *Config) { c.Analysis.Iterations = -5 }, "analysis.iterations"},
		{"rate", func(c *Config) { c.Embedder.RequestsPerSecond = -1 }, "requests_per_second"},
		{"retries", func(c *Config) { c.Embedder.MaxRetries = 11 }, "max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.message)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Embedder.Provider = ProviderHuggingFace
	cfg.Embedder.HuggingFace.Token = "secret"
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderHuggingFace, loaded.Embedder.Provider)
}

func TestLoadDefault_PrefersWorkingDirectory(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is already set, even to ""
	require.NoError(t, os.Unsetenv("EMBSCOPE_LOG_FORMAT"))
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, os.WriteFile(FileName, []byte("analysis:\n  dimensions: 3\n"), 0o644))
	require.NoError(t, os.WriteFile(".env", []byte("EMBSCOPE_LOG_FORMAT=json\n"), 0o644))

	cfg, path, err := LoadDefault("")
	require.NoError(t, err)
	assert.Equal(t, FileName, path)
	assert.Equal(t, 3, cfg.Analysis.Dimensions)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadDefault_ExplicitMissing(t *testing.T) {
	_, _, err := LoadDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
