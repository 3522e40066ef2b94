package gemini

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// ErrEmptyResponse indicates the model returned no text candidates.
var ErrEmptyResponse = errors.New("gemini: empty response")

// Generator implements ai.Generator with a Gemini generative model.
type Generator struct {
	model  *genai.GenerativeModel
	guard  *guard
	logger *slog.Logger
}

// Generate returns the text of the first candidate, trimmed.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("generating completion", "prompt_length", len(prompt))

	result, err := g.guard.do(ctx, func(ctx context.Context) (any, error) {
		resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
		return responseText(resp)
	})
	if err != nil {
		g.logger.Error("failed to generate completion", "err", err)
		return "", err
	}
	return result.(string), nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
