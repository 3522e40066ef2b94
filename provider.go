package facultyhub

import (
	"context"
	"fmt"

	"github.com/poiesic/facultyhub/ai"
	"github.com/poiesic/facultyhub/ai/gemini"
	"github.com/poiesic/facultyhub/ai/openai"
	"github.com/poiesic/facultyhub/ai/tfidf"
)

// NewProvider builds the AI provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg *ai.Config) (ai.AIProvider, error) {
	if cfg == nil {
		cfg = ai.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ai.ProviderTFIDF:
		return tfidf.NewProvider(), nil
	case ai.ProviderGemini:
		return gemini.NewProvider(ctx, cfg)
	case ai.ProviderOpenAI:
		return openai.NewProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ai.ErrUnknownProvider, cfg.Provider)
	}
}
