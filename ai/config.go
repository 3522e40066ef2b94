// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Supported provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderTFIDF  = "tfidf"
)

// ErrUnknownProvider indicates Config.Provider names no supported backend.
var ErrUnknownProvider = errors.New("ai config: unknown provider")

// Config holds configuration for AI service providers.
type Config struct {
	// Provider selects the backend: "openai" (any OpenAI-compatible server),
	// "gemini", or "tfidf" (offline embeddings, no generation).
	Provider string

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// GenerationHost is the base URL for the text generation service API.
	GenerationHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-004"
	EmbeddingModel string

	// GenerationModel is the model identifier used to draft emails.
	// Example: "qwen2.5:3b", "gemini-1.5-flash"
	GenerationModel string

	// APIKey authenticates against hosted services. Local OpenAI-compatible
	// servers accept any token.
	APIKey string

	// Temperature controls generation randomness. Default: 0.7
	Temperature float64

	// Timeout bounds a single remote call. Default: 30s
	Timeout time.Duration

	// RequestsPerMinute caps calls to rate limited services. Zero disables the limit.
	RequestsPerMinute int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider selects the backend and resets both models to that backend's
// defaults. Apply model options after this one to override them.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
		switch provider {
		case ProviderGemini:
			c.EmbeddingModel = "text-embedding-004"
			c.GenerationModel = "gemini-1.5-flash"
		case ProviderTFIDF:
			c.EmbeddingModel = "tfidf"
			c.GenerationModel = ""
		case ProviderOpenAI:
			c.EmbeddingModel = "embeddinggemma"
			c.GenerationModel = "qwen2.5:3b"
		}
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGenerationHost sets the generation service host URL.
func WithGenerationHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerationHost = host
	}
}

// WithHost sets both embedding and generation hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GenerationHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGenerationModel sets the generation model identifier.
func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

// WithAPIKey sets the API key for hosted services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithTemperature sets the generation temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithRequestsPerMinute sets the request rate cap.
func WithRequestsPerMinute(n int) ConfigOption {
	return func(c *Config) {
		c.RequestsPerMinute = n
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and generation use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		Provider:          ProviderOpenAI,
		EmbeddingHost:     defaultHost,
		GenerationHost:    defaultHost,
		EmbeddingModel:    "embeddinggemma",
		GenerationModel:   "qwen2.5:3b",
		Temperature:       0.7,
		Timeout:           30 * time.Second,
		RequestsPerMinute: 60,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderGemini),
//	    WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// For the OpenAI provider it adds the /v1 suffix to hosts if missing, which is
// required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Provider != ProviderOpenAI {
		return
	}
	c.EmbeddingHost = withV1Suffix(c.EmbeddingHost)
	c.GenerationHost = withV1Suffix(c.GenerationHost)
}

func withV1Suffix(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderOpenAI:
		if c.EmbeddingHost == "" {
			return errors.New("ai config: EmbeddingHost is required")
		}
		if c.GenerationHost == "" {
			return errors.New("ai config: GenerationHost is required")
		}
		if c.EmbeddingModel == "" {
			return errors.New("ai config: EmbeddingModel is required")
		}
		if c.GenerationModel == "" {
			return errors.New("ai config: GenerationModel is required")
		}
	case ProviderGemini:
		if c.APIKey == "" {
			return errors.New("ai config: APIKey is required for gemini")
		}
		if c.EmbeddingModel == "" {
			return errors.New("ai config: EmbeddingModel is required")
		}
		if c.GenerationModel == "" {
			return errors.New("ai config: GenerationModel is required")
		}
	case ProviderTFIDF:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	if c.Timeout <= 0 {
		return errors.New("ai config: Timeout must be positive")
	}
	if c.RequestsPerMinute < 0 {
		return errors.New("ai config: RequestsPerMinute cannot be negative")
	}
	return nil
}
