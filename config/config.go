// Package config loads embscope settings from a YAML file, a .env file and the environment,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alDuncanson/embscope/analysis"
)

// Embedding providers.
const (
	ProviderOllama      = "ollama"
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
)

// FileName is the config file looked up in the working directory.
const FileName = "embscope.yaml"

// OllamaConfig holds connection details for a local Ollama server.
type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// OpenAIConfig configures the OpenAI embeddings API. The key itself is read from the
// environment variable named by APIKeyEnv so it never lives in the file.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`

	APIKey string `yaml:"-"`
}

// HuggingFaceConfig configures the Hugging Face inference API.
type HuggingFaceConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"`

	Token string `yaml:"-"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Provider          string            `yaml:"provider"`
	RequestsPerSecond float64           `yaml:"requests_per_second"`
	Concurrency       int               `yaml:"concurrency"`
	MaxRetries        int               `yaml:"max_retries"`
	Ollama            OllamaConfig      `yaml:"ollama"`
	OpenAI            OpenAIConfig      `yaml:"openai"`
	HuggingFace       HuggingFaceConfig `yaml:"huggingface"`
}

// QdrantConfig contains connection details for the Qdrant record store.
type QdrantConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
	Dimension  int    `yaml:"dimension"`
}

// AnalysisConfig holds the default analysis parameters.
type AnalysisConfig struct {
	Method     string  `yaml:"method"`
	Dimensions int     `yaml:"dimensions"`
	Perplexity float64 `yaml:"perplexity"`
	Iterations int     `yaml:"iterations"`
	Seed       int64   `yaml:"seed"`
	Normalize  bool    `yaml:"normalize"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root configuration.
type Config struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the built-in configuration: a local Ollama with nomic-embed-text and a
// local Qdrant.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a config from path. A missing file yields defaults. Environment overrides are
// applied on top either way.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// LoadDefault loads .env if present, then the first config file found among explicit,
// ./embscope.yaml and ~/.config/embscope/config.yaml. It returns the path used, or "" when
// no file exists.
func LoadDefault(explicit string) (*Config, string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("load .env: %w", err)
	}

	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, "", fmt.Errorf("config file: %w", err)
		}
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}

	candidates := []string{FileName}
	if userPath, err := UserConfigPath(); err == nil {
		candidates = append(candidates, userPath)
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := Load(candidate)
			return cfg, candidate, err
		}
	}

	cfg, err := Load("")
	return cfg, "", err
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// UserConfigPath returns ~/.config/embscope/config.yaml.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "embscope", "config.yaml"), nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	switch c.Embedder.Provider {
	case ProviderOllama, ProviderOpenAI, ProviderHuggingFace:
	default:
		return fmt.Errorf("embedder.provider must be one of ollama, openai, huggingface, got %q", c.Embedder.Provider)
	}
	if _, err := analysis.ParseMethod(c.Analysis.Method); err != nil {
		return fmt.Errorf("analysis.method: %w", err)
	}
	if c.Analysis.Dimensions != 2 && c.Analysis.Dimensions != 3 {
		return fmt.Errorf("analysis.dimensions must be 2 or 3, got %d", c.Analysis.Dimensions)
	}
	if c.Analysis.Perplexity <= 0 {
		return fmt.Errorf("analysis.perplexity must be positive, got %v", c.Analysis.Perplexity)
	}
	if c.Analysis.Iterations <= 0 {
		return fmt.Errorf("analysis.iterations must be positive, got %d", c.Analysis.Iterations)
	}
	if c.Embedder.RequestsPerSecond < 0 {
		return fmt.Errorf("embedder.requests_per_second must not be negative, got %v", c.Embedder.RequestsPerSecond)
	}
	if c.Embedder.MaxRetries < 0 || c.Embedder.MaxRetries > 10 {
		return fmt.Errorf("embedder.max_retries must be 0-10, got %d", c.Embedder.MaxRetries)
	}
	return nil
}

// AnalysisConfig converts the analysis section into an analysis.Config. Call Validate first;
// an unknown method is passed through and rejected by the pipeline.
func (c *Config) AnalysisConfig() analysis.Config {
	method, err := analysis.ParseMethod(c.Analysis.Method)
	if err != nil {
		method = analysis.Method(c.Analysis.Method)
	}
	cfg := analysis.DefaultConfig()
	cfg.Method = method
	cfg.Dimensions = c.Analysis.Dimensions
	cfg.Perplexity = c.Analysis.Perplexity
	cfg.Iterations = c.Analysis.Iterations
	cfg.Seed = c.Analysis.Seed
	cfg.Normalize = c.Analysis.Normalize
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Embedder.Provider == "" {
		cfg.Embedder.Provider = ProviderOllama
	}
	if cfg.Embedder.Concurrency == 0 {
		cfg.Embedder.Concurrency = 4
	}
	if cfg.Embedder.MaxRetries == 0 {
		cfg.Embedder.MaxRetries = 2
	}
	if cfg.Embedder.Ollama.Host == "" {
		cfg.Embedder.Ollama.Host = "http://localhost:11434"
	}
	if cfg.Embedder.Ollama.Model == "" {
		cfg.Embedder.Ollama.Model = "nomic-embed-text"
	}
	if cfg.Embedder.OpenAI.APIKeyEnv == "" {
		cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.OpenAI.Model == "" {
		cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.HuggingFace.Model == "" {
		cfg.Embedder.HuggingFace.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Qdrant.Address == "" {
		cfg.Qdrant.Address = "localhost:6334"
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "embeddings"
	}
	if cfg.Qdrant.Dimension == 0 {
		cfg.Qdrant.Dimension = 768
	}
	if cfg.Analysis.Method == "" {
		cfg.Analysis.Method = string(analysis.MethodLinear)
	}
	if cfg.Analysis.Dimensions == 0 {
		cfg.Analysis.Dimensions = 2
	}
	if cfg.Analysis.Perplexity == 0 {
		cfg.Analysis.Perplexity = 30
	}
	if cfg.Analysis.Iterations == 0 {
		cfg.Analysis.Iterations = 500
	}
	if cfg.Analysis.Seed == 0 {
		cfg.Analysis.Seed = 42
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func applyEnv(cfg *Config) {
	cfg.Embedder.Provider = strings.ToLower(getEnv("EMBSCOPE_PROVIDER", cfg.Embedder.Provider))
	cfg.Embedder.Ollama.Host = getEnv("OLLAMA_HOST", cfg.Embedder.Ollama.Host)
	cfg.Embedder.RequestsPerSecond = getEnvFloat("EMBSCOPE_RATE_LIMIT", cfg.Embedder.RequestsPerSecond)
	cfg.Qdrant.Address = getEnv("QDRANT_ADDRESS", cfg.Qdrant.Address)
	cfg.Qdrant.Dimension = getEnvInt("EMBSCOPE_DIMENSION", cfg.Qdrant.Dimension)
	cfg.Log.Level = getEnv("EMBSCOPE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("EMBSCOPE_LOG_FORMAT", cfg.Log.Format)

	if model := os.Getenv("EMBSCOPE_MODEL"); model != "" {
		switch cfg.Embedder.Provider {
		case ProviderOpenAI:
			cfg.Embedder.OpenAI.Model = model
		case ProviderHuggingFace:
			cfg.Embedder.HuggingFace.Model = model
		default:
			cfg.Embedder.Ollama.Model = model
		}
	}

	cfg.Embedder.OpenAI.APIKey = os.Getenv(cfg.Embedder.OpenAI.APIKeyEnv)
	cfg.Embedder.HuggingFace.Token = os.Getenv("HF_TOKEN")
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
