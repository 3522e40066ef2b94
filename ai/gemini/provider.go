package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/poiesic/facultyhub/ai"
	"google.golang.org/api/option"
)

// Provider implements ai.AIProvider on a single Gemini client.
type Provider struct {
	client    *genai.Client
	embedder  *Embedder
	generator *Generator
	logger    *slog.Logger
}

// NewProvider creates a Gemini-backed provider. The config must select the
// gemini provider and carry an API key.
//
// Returns ai.AIProvider interface to enforce abstraction.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Provider != ai.ProviderGemini {
		return nil, fmt.Errorf("%w: gemini provider given %q config", ai.ErrUnknownProvider, config.Provider)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	logger := slog.Default().With("component", "gemini-provider")
	g := newGuard("gemini", config.RequestsPerMinute, config.Timeout, logger)

	model := client.GenerativeModel(config.GenerationModel)
	model.SetTemperature(float32(config.Temperature))

	return &Provider{
		client: client,
		embedder: &Embedder{
			model:     client.EmbeddingModel(config.EmbeddingModel),
			modelName: config.EmbeddingModel,
			guard:     g,
			logger:    slog.Default().With("component", "gemini-embedder"),
		},
		generator: &Generator{
			model:  model,
			guard:  g,
			logger: slog.Default().With("component", "gemini-generator"),
		},
		logger: logger,
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the text generation service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	return p.client.Close()
}
